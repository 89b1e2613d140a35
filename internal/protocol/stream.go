package protocol

import (
	"encoding/json"
	"unicode/utf8"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
)

// Fragment types carried by streaming query chunks.
const (
	FragmentAnswer   = 1
	FragmentThinking = 2
)

// Fragment is one piece of text from a streaming answer.
type Fragment struct {
	Type int
	Text string
}

// DecodeQueryStream returns the final answer from a streaming query body.
//
// The longest answer fragment wins (first on ties); without any answer the
// longest thinking fragment is returned instead.
func DecodeQueryStream(raw string) (string, error) {
	fragments, err := QueryFragments(raw)
	if err != nil {
		return "", err
	}

	answer, answerLen := "", -1
	thinking, thinkingLen := "", -1
	for _, f := range fragments {
		n := utf8.RuneCountInString(f.Text)
		switch f.Type {
		case FragmentAnswer:
			if n > answerLen {
				answer, answerLen = f.Text, n
			}
		default:
			if n > thinkingLen {
				thinking, thinkingLen = f.Text, n
			}
		}
	}

	switch {
	case answerLen >= 0:
		return answer, nil
	case thinkingLen >= 0:
		return thinking, nil
	default:
		return "", errs.Protocol("stream carried no answer or thinking fragment", nil)
	}
}

// QueryFragments lists every text fragment of a streaming body in order.
func QueryFragments(raw string) ([]Fragment, error) {
	frames, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}

	var out []Fragment
	for _, frame := range frames {
		for _, entry := range entries(frame) {
			if String(Index(entry, 0)) != ResultTag {
				continue
			}
			if containsCode(errorCodes(entry), CodeAuthExpired) {
				return nil, errs.AuthExpired("query")
			}
			if f, ok := fragmentOf(entry); ok {
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func fragmentOf(entry []any) (Fragment, bool) {
	payload, ok := Index(entry, 2).(string)
	if !ok {
		return Fragment{}, false
	}

	var inner any
	if err := json.Unmarshal([]byte(payload), &inner); err != nil {
		return Fragment{}, false
	}

	switch first := Index(inner, 0).(type) {
	case []any:
		text := String(Index(first, 0))
		if text == "" {
			return Fragment{}, false
		}
		typ := FragmentThinking
		if tags := List(Index(first, 4)); len(tags) > 0 {
			if tag, ok := Int(tags[len(tags)-1]); ok && tag == FragmentAnswer {
				typ = FragmentAnswer
			}
		}
		return Fragment{Type: typ, Text: text}, true
	case string:
		if first == "" {
			return Fragment{}, false
		}
		return Fragment{Type: FragmentThinking, Text: first}, true
	default:
		return Fragment{}, false
	}
}
