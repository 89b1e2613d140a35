package protocol

import (
	"encoding/json"
	"math"
	"time"
)

// Index returns v[i] when v is an array long enough, otherwise nil.
func Index(v any, i int) any {
	list, ok := v.([]any)
	if !ok || i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// List returns v as an array, or nil.
func List(v any) []any {
	list, _ := v.([]any)
	return list
}

// String returns v as a string, or "".
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int returns v as an integer when it is a whole JSON number.
func Int(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}

// Truthy treats true and non-zero numbers as set.
func Truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	default:
		n, ok := Int(v)
		return ok && n != 0
	}
}

// Strings collects every non-empty string nested anywhere in v, depth first.
func Strings(v any) []string {
	var out []string
	var walk func(any)
	walk = func(x any) {
		switch t := x.(type) {
		case string:
			if t != "" {
				out = append(out, t)
			}
		case []any:
			for _, item := range t {
				walk(item)
			}
		}
	}
	walk(v)
	return out
}

// Timestamp converts a [seconds, nanos] pair to UTC time; zero if malformed.
func Timestamp(v any) time.Time {
	secs, ok := Int(Index(v, 0))
	if !ok {
		return time.Time{}
	}
	nanos, _ := Int(Index(v, 1))
	return time.Unix(secs, nanos).UTC()
}
