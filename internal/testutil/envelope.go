// Package testutil provides envelope builders and mocks for package tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Envelope frames chunks the way the service does: prefix, then a byte
// count line before each chunk.
func Envelope(chunks ...string) string {
	var b strings.Builder
	b.WriteString(")]}'\n")
	for _, c := range chunks {
		fmt.Fprintf(&b, "%d\n%s\n", len(c), c)
	}
	return b.String()
}

// ResultChunk encodes one wrb.fr entry carrying payload for opID.
func ResultChunk(opID string, payload any) string {
	inner := mustJSON(payload)
	return mustJSON([]any{[]any{"wrb.fr", opID, inner, nil, nil, nil, "generic"}})
}

// ErrorChunk encodes a wrb.fr entry with a null payload and an error code.
func ErrorChunk(opID string, code int) string {
	return mustJSON([]any{[]any{"wrb.fr", opID, nil, nil, nil, []any{code}, "generic"}})
}

// TrailerChunk mimics the bookkeeping chunks that follow real results.
func TrailerChunk() string {
	return `[["di",42],["af.httprm",41,"-1234567890",7]]`
}

// Result is a complete single-result envelope.
func Result(opID string, payload any) string {
	return Envelope(ResultChunk(opID, payload), TrailerChunk())
}

// AuthExpired is a complete envelope signalling RPC error 16.
func AuthExpired(opID string) string {
	return Envelope(ErrorChunk(opID, 16))
}

// FragmentChunk encodes one streaming query fragment of the given type.
func FragmentChunk(fragmentType int, text string) string {
	inner := mustJSON([]any{[]any{text, nil, []any{}, nil, []any{fragmentType}}})
	return mustJSON([]any{[]any{"wrb.fr", nil, inner, nil, nil, nil, "generic"}})
}

// Answer is a streaming body with one thinking and one answer fragment.
func Answer(text string) string {
	return Envelope(
		FragmentChunk(2, "Looking through the sources for this question..."),
		FragmentChunk(1, text),
	)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
