package protocol

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
)

const (
	// XSSIPrefix guards every response body against script inclusion.
	XSSIPrefix = ")]}'"

	// ResultTag marks an RPC result entry inside a chunk.
	ResultTag = "wrb.fr"

	// CodeAuthExpired is the RPC error code for an expired session.
	CodeAuthExpired = 16
)

// DecodeResponse extracts the result for opID from a batchexecute body.
//
// An auth-expired entry anywhere in the body wins over a matching payload.
func DecodeResponse(raw, opID string) (any, error) {
	frames, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	var (
		result    any
		resultErr error
		found     bool
	)

	for _, frame := range frames {
		for _, entry := range entries(frame) {
			if String(Index(entry, 0)) != ResultTag {
				continue
			}
			codes := errorCodes(entry)
			if containsCode(codes, CodeAuthExpired) {
				return nil, errs.AuthExpired(opID)
			}
			if found || String(Index(entry, 1)) != opID {
				continue
			}
			found = true
			result, resultErr = decodePayload(entry, opID, codes)
		}
	}

	if !found {
		return nil, errs.NotFound(opID)
	}
	return result, resultErr
}

func decodePayload(entry []any, opID string, codes []int64) (any, error) {
	switch payload := Index(entry, 2).(type) {
	case string:
		var out any
		if err := json.Unmarshal([]byte(payload), &out); err != nil {
			return nil, &errs.Error{Kind: errs.KindProtocol, Op: opID, Msg: "result payload is not JSON", Err: err}
		}
		return out, nil
	case nil:
		if len(codes) > 0 {
			return nil, &errs.Error{Kind: errs.KindAPI, Op: opID, Code: int(codes[0]), Msg: "rpc returned an error"}
		}
		return nil, nil
	default:
		return payload, nil
	}
}

// parseEnvelope strips the prefix and walks the byte-count framing.
//
// A count is honoured when exactly that many bytes form valid JSON; the live
// service counts UTF-16 units, so otherwise the rest of the line is used.
func parseEnvelope(raw string) ([][]any, error) {
	rest, ok := stripPrefix(raw)
	if !ok {
		return nil, errs.Protocol("missing anti-XSSI prefix", nil)
	}

	var frames [][]any
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		if rest == "" {
			return frames, nil
		}

		line, after, _ := strings.Cut(rest, "\n")
		n, err := strconv.Atoi(strings.TrimSpace(line))

		var payload string
		switch {
		case err != nil:
			payload, rest = line, after
		case n >= 0 && n <= len(after) && json.Valid([]byte(after[:n])):
			payload, rest = after[:n], after[n:]
		default:
			payload, rest, _ = strings.Cut(after, "\n")
		}

		payload = strings.TrimSpace(payload)
		if payload == "" {
			continue
		}

		var frame []any
		if err := json.Unmarshal([]byte(payload), &frame); err != nil {
			return nil, errs.Protocol("chunk is not a JSON array", err)
		}
		frames = append(frames, frame)
	}
}

func stripPrefix(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, XSSIPrefix)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(rest, "\n") || strings.HasPrefix(rest, "\r\n") {
		return rest, true
	}
	return "", false
}

// entries yields the RPC entries of a chunk. A chunk is normally a list of
// entries but a bare entry is accepted too.
func entries(frame []any) [][]any {
	if _, bare := Index(frame, 0).(string); bare {
		return [][]any{frame}
	}
	out := make([][]any, 0, len(frame))
	for _, item := range frame {
		if entry, ok := item.([]any); ok {
			out = append(out, entry)
		}
	}
	return out
}

func errorCodes(entry []any) []int64 {
	var codes []int64
	for _, v := range List(Index(entry, 5)) {
		if code, ok := Int(v); ok {
			codes = append(codes, code)
		}
	}
	return codes
}

func containsCode(codes []int64, want int64) bool {
	for _, c := range codes {
		if c == want {
			return true
		}
	}
	return false
}
