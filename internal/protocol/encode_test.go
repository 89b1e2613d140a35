package protocol

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	t.Run("body structure", func(t *testing.T) {
		body, err := EncodeRequest("wXbhsf", []any{nil, 1}, "csrf123")
		require.NoError(t, err)

		assert.True(t, strings.HasPrefix(body, "f.req="))
		assert.Contains(t, body, "&at=csrf123&")
		assert.True(t, strings.HasSuffix(body, "&"))
	})

	t.Run("single call batch envelope", func(t *testing.T) {
		body, err := EncodeRequest("wXbhsf", []any{nil, 1, nil, []any{2}}, "tok")
		require.NoError(t, err)

		values, err := url.ParseQuery(body)
		require.NoError(t, err)

		var outer [][][]any
		require.NoError(t, json.Unmarshal([]byte(values.Get("f.req")), &outer))
		require.Len(t, outer, 1)
		require.Len(t, outer[0], 1)

		tuple := outer[0][0]
		assert.Equal(t, "wXbhsf", tuple[0])
		assert.Equal(t, `[null,1,null,[2]]`, tuple[1])
		assert.Nil(t, tuple[2])
		assert.Equal(t, "generic", tuple[3])
	})

	t.Run("compact params without html escaping", func(t *testing.T) {
		body, err := EncodeRequest("abc", map[string]any{"q": "<a & b>", "n": 1}, "")
		require.NoError(t, err)

		req, err := DecodeRequest(body)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"q": "<a & b>", "n": float64(1)}, req.Params)

		freq, _ := url.QueryUnescape(strings.TrimPrefix(strings.TrimSuffix(body, "&"), "f.req="))
		assert.Contains(t, freq, `{\"n\":1,\"q\":\"<a & b>\"}`)
	})

	t.Run("empty csrf omits at", func(t *testing.T) {
		body, err := EncodeRequest("abc", []any{1}, "")
		require.NoError(t, err)
		assert.NotContains(t, body, "at=")
	})

	t.Run("csrf special characters are escaped", func(t *testing.T) {
		body, err := EncodeRequest("abc", []any{1}, "tok/en+val=ue")
		require.NoError(t, err)
		assert.Contains(t, body, "tok%2Fen%2Bval%3Due")
	})

	t.Run("spaces use percent encoding", func(t *testing.T) {
		body, err := EncodeRequest("abc", []any{"two words"}, "")
		require.NoError(t, err)
		assert.NotContains(t, body, "+")
		assert.Contains(t, body, "%20")
	})

	t.Run("deterministic", func(t *testing.T) {
		params := map[string]any{"b": []any{1, "x"}, "a": nil}
		first, err := EncodeRequest("abc", params, "t")
		require.NoError(t, err)
		second, err := EncodeRequest("abc", params, "t")
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("rejects missing operation id", func(t *testing.T) {
		_, err := EncodeRequest("", []any{}, "t")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("rejects unencodable params", func(t *testing.T) {
		_, err := EncodeRequest("abc", []any{make(chan int)}, "t")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		opID   string
		params any
	}{
		{"list notebooks", "wXbhsf", []any{nil, 1, nil, []any{2}}},
		{"get notebook", "rLM1Ne", []any{"nb-1", nil, []any{2}, nil, 0}},
		{"nested object", "izAoDd", map[string]any{"title": "Notes – ünïcode", "tags": []any{"a", "b"}, "n": 2.5}},
		{"scalar", "hizoJc", "just a string"},
		{"null", "abc", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := EncodeRequest(tc.opID, tc.params, "AHBxJ9q")
			require.NoError(t, err)

			req, err := DecodeRequest(body)
			require.NoError(t, err)
			assert.Equal(t, tc.opID, req.OperationID)
			assert.Equal(t, "AHBxJ9q", req.CSRF)

			want, err := json.Marshal(tc.params)
			require.NoError(t, err)
			got, err := json.Marshal(req.Params)
			require.NoError(t, err)
			assert.JSONEq(t, string(want), string(got))
		})
	}
}

func TestEncodeQuery(t *testing.T) {
	params := []any{[]any{}, "question", nil, []any{2, nil, []any{1}}, "conv-id"}
	body, err := EncodeQuery(params, "csrf")
	require.NoError(t, err)
	assert.Contains(t, body, "at=csrf")

	got, csrf, err := DecodeQuery(body)
	require.NoError(t, err)
	assert.Equal(t, "csrf", csrf)
	assert.Equal(t, "question", Index(got, 1))
	assert.Equal(t, "conv-id", Index(got, 4))

	values, err := url.ParseQuery(body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(values.Get("f.req"), `[null,"`))
}

func TestDecodeRequestErrors(t *testing.T) {
	_, err := DecodeRequest("at=x&")
	assert.ErrorIs(t, err, errs.ErrProtocol)

	_, err = DecodeRequest("f.req=%5B1%5D&")
	assert.ErrorIs(t, err, errs.ErrProtocol)
}

func TestEndpoints(t *testing.T) {
	e := Endpoints{
		BatchURL:   "https://example.test/_/data/batchexecute",
		QueryURL:   "https://example.test/_/data/Stream",
		BuildLabel: "boq_labs_20260108",
	}

	t.Run("batch url", func(t *testing.T) {
		u := e.Batch("rLM1Ne", "", "/notebook/abc")
		assert.Contains(t, u, "rpcids=rLM1Ne")
		assert.Contains(t, u, "bl=boq_labs_20260108")
		assert.Contains(t, u, "source-path=%2Fnotebook%2Fabc")
		assert.Contains(t, u, "rt=c")
		assert.Contains(t, u, "hl=en")
		assert.NotContains(t, u, "f.sid")
	})

	t.Run("session id is included when set", func(t *testing.T) {
		assert.Contains(t, e.Batch("wXbhsf", "12345", ""), "f.sid=12345")
		assert.Contains(t, e.Batch("wXbhsf", "12345", ""), "source-path=%2F")
	})

	t.Run("query url", func(t *testing.T) {
		u := e.Query("99999", 200000)
		assert.True(t, strings.HasPrefix(u, e.QueryURL+"?"))
		assert.Contains(t, u, "_reqid=200000")
		assert.Contains(t, u, "f.sid=99999")
	})
}
