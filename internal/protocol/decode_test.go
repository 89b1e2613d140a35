package protocol

import (
	"strings"
	"testing"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/GriffinCanCode/NotebookRPC/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func notebookListPayload() any {
	return []any{
		[]any{
			[]any{
				"My Notebook",
				[]any{[]any{[]any{"src-id-1"}, "Source Title"}},
				"nb-uuid-123",
				nil,
				nil,
				[]any{1, false, true, nil, nil, []any{1700000000, 0}, nil, nil, []any{1699000000, 0}},
			},
		},
	}
}

func TestDecodeResponse(t *testing.T) {
	t.Run("extracts matching rpc", func(t *testing.T) {
		raw := testutil.Result("wXbhsf", notebookListPayload())

		result, err := DecodeResponse(raw, "wXbhsf")
		require.NoError(t, err)

		notebook := Index(Index(result, 0), 0)
		assert.Equal(t, "My Notebook", Index(notebook, 0))
		assert.Equal(t, "nb-uuid-123", Index(notebook, 2))
	})

	t.Run("requires anti-xssi prefix", func(t *testing.T) {
		raw := strings.TrimPrefix(testutil.Result("wXbhsf", []any{1}), ")]}'\n")

		_, err := DecodeResponse(raw, "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrProtocol)
	})

	t.Run("prefix must end the line", func(t *testing.T) {
		_, err := DecodeResponse(")]}'[1]", "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrProtocol)
	})

	t.Run("error 16 wins over a matching payload", func(t *testing.T) {
		raw := testutil.Envelope(
			testutil.ResultChunk("wXbhsf", notebookListPayload()),
			testutil.ErrorChunk("wXbhsf", 16),
		)

		_, err := DecodeResponse(raw, "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrAuthExpired)
	})

	t.Run("error 16 for another rpc still counts", func(t *testing.T) {
		raw := testutil.Envelope(
			testutil.ErrorChunk("rLM1Ne", 16),
			testutil.ResultChunk("wXbhsf", []any{1}),
		)

		_, err := DecodeResponse(raw, "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrAuthExpired)
	})

	t.Run("missing rpc is not found", func(t *testing.T) {
		raw := testutil.Result("wXbhsf", []any{1})

		_, err := DecodeResponse(raw, "NONEXISTENT")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("empty envelope is not found", func(t *testing.T) {
		_, err := DecodeResponse(")]}'\n", "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("other rpc error codes surface as api errors", func(t *testing.T) {
		_, err := DecodeResponse(testutil.Envelope(testutil.ErrorChunk("hizoJc", 5)), "hizoJc")
		require.ErrorIs(t, err, errs.ErrAPI)

		var e *errs.Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, 5, e.Code)
	})

	t.Run("null payload without error is an empty result", func(t *testing.T) {
		raw := testutil.Envelope(`[["wrb.fr","izAoDd",null,null,null,null,"generic"]]`)

		result, err := DecodeResponse(raw, "izAoDd")
		require.NoError(t, err)
		assert.Nil(t, result)
	})

	t.Run("malformed chunk is a protocol error", func(t *testing.T) {
		_, err := DecodeResponse(")]}'\n12\n[[\"wrb.fr\",\n", "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrProtocol)
	})

	t.Run("payload that is not json is a protocol error", func(t *testing.T) {
		raw := testutil.Envelope(`[["wrb.fr","wXbhsf","{not json",null,null,null,"generic"]]`)

		_, err := DecodeResponse(raw, "wXbhsf")
		assert.ErrorIs(t, err, errs.ErrProtocol)
	})
}

func TestEnvelopeFraming(t *testing.T) {
	t.Run("multi chunk", func(t *testing.T) {
		frames, err := parseEnvelope(")]}'\n3\n[1]\n3\n[2]\n")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{float64(1)}, {float64(2)}}, frames)
	})

	t.Run("exact byte counts allow payloads spanning lines", func(t *testing.T) {
		frames, err := parseEnvelope(")]}'\n8\n[1,\n2,3]\n")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{float64(1), float64(2), float64(3)}}, frames)
	})

	t.Run("utf-16 counts fall back to the line", func(t *testing.T) {
		chunk := `[["wrb.fr","x","\"héllo\""]]`
		raw := ")]}'\n\n" + "27\n" + chunk + "\n"

		frames, err := parseEnvelope(raw)
		require.NoError(t, err)
		require.Len(t, frames, 1)
	})

	t.Run("crlf line breaks", func(t *testing.T) {
		frames, err := parseEnvelope(")]}'\r\n3\r\n[1]\r\n")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{float64(1)}}, frames)
	})

	t.Run("bare chunk without a count", func(t *testing.T) {
		frames, err := parseEnvelope(")]}'\n[1,2]\n")
		require.NoError(t, err)
		assert.Equal(t, [][]any{{float64(1), float64(2)}}, frames)
	})
}

func TestValueHelpers(t *testing.T) {
	v := []any{"a", []any{float64(3), "b"}, nil, true}

	assert.Equal(t, "a", String(Index(v, 0)))
	assert.Nil(t, Index(v, 10))
	assert.Nil(t, Index("not a list", 0))
	assert.Len(t, List(Index(v, 1)), 2)

	n, ok := Int(Index(Index(v, 1), 0))
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)
	_, ok = Int(2.5)
	assert.False(t, ok)

	assert.True(t, Truthy(Index(v, 3)))
	assert.True(t, Truthy(float64(1)))
	assert.False(t, Truthy(nil))

	assert.Equal(t, []string{"a", "b"}, Strings(v))

	ts := Timestamp([]any{float64(1700000000), float64(0)})
	assert.Equal(t, int64(1700000000), ts.Unix())
	assert.True(t, Timestamp("nope").IsZero())
}
