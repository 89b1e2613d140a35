package protocol

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
)

// GenericTag closes every request tuple and marks error entries in responses.
const GenericTag = "generic"

// Request is a decoded batchexecute request body.
type Request struct {
	OperationID string
	Params      any
	CSRF        string
}

// EncodeRequest builds the form body for a single-call batch.
func EncodeRequest(opID string, params any, csrf string) (string, error) {
	if opID == "" {
		return "", errs.Validation("operation id is required")
	}

	paramsJSON, err := compactJSON(params)
	if err != nil {
		return "", &errs.Error{Kind: errs.KindValidation, Op: opID, Msg: "params are not JSON-encodable", Err: err}
	}

	envelope := []any{[]any{[]any{opID, paramsJSON, nil, GenericTag}}}
	freq, err := compactJSON(envelope)
	if err != nil {
		return "", &errs.Error{Kind: errs.KindValidation, Op: opID, Msg: "envelope encoding failed", Err: err}
	}

	return formBody(freq, csrf), nil
}

// EncodeQuery builds the form body for the streaming query endpoint.
func EncodeQuery(params any, csrf string) (string, error) {
	paramsJSON, err := compactJSON(params)
	if err != nil {
		return "", &errs.Error{Kind: errs.KindValidation, Msg: "query params are not JSON-encodable", Err: err}
	}

	freq, err := compactJSON([]any{nil, paramsJSON})
	if err != nil {
		return "", &errs.Error{Kind: errs.KindValidation, Msg: "query envelope encoding failed", Err: err}
	}

	return formBody(freq, csrf), nil
}

// DecodeRequest reverses EncodeRequest.
func DecodeRequest(body string) (*Request, error) {
	freq, csrf, err := splitForm(body)
	if err != nil {
		return nil, err
	}

	var envelope any
	if err := json.Unmarshal([]byte(freq), &envelope); err != nil {
		return nil, errs.Protocol("f.req is not JSON", err)
	}

	tuple := List(Index(Index(envelope, 0), 0))
	if len(tuple) < 4 {
		return nil, errs.Protocol("f.req is not a single-call batch", nil)
	}

	opID, ok := tuple[0].(string)
	if !ok || opID == "" {
		return nil, errs.Protocol("missing operation id", nil)
	}

	params, err := parseEmbedded(tuple[1])
	if err != nil {
		return nil, err
	}

	return &Request{OperationID: opID, Params: params, CSRF: csrf}, nil
}

// DecodeQuery reverses EncodeQuery, returning the params and CSRF token.
func DecodeQuery(body string) (any, string, error) {
	freq, csrf, err := splitForm(body)
	if err != nil {
		return nil, "", err
	}

	var envelope any
	if err := json.Unmarshal([]byte(freq), &envelope); err != nil {
		return nil, "", errs.Protocol("f.req is not JSON", err)
	}

	params, err := parseEmbedded(Index(envelope, 1))
	if err != nil {
		return nil, "", err
	}
	return params, csrf, nil
}

func splitForm(body string) (string, string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return "", "", errs.Protocol("body is not form-encoded", err)
	}
	freq := values.Get("f.req")
	if freq == "" {
		return "", "", errs.Protocol("missing f.req", nil)
	}
	return freq, values.Get("at"), nil
}

func parseEmbedded(v any) (any, error) {
	text, ok := v.(string)
	if !ok {
		return nil, errs.Protocol("embedded params are not a JSON string", nil)
	}
	var out any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, errs.Protocol("embedded params are not JSON", err)
	}
	return out, nil
}

func formBody(freq, csrf string) string {
	var b strings.Builder
	b.WriteString("f.req=")
	b.WriteString(escape(freq))
	if csrf != "" {
		b.WriteString("&at=")
		b.WriteString(escape(csrf))
	}
	b.WriteString("&")
	return b.String()
}

// escape percent-encodes everything outside the RFC 3986 unreserved set.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func compactJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
