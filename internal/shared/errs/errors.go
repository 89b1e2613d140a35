package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// MaxExcerpt bounds the response body excerpt carried by API errors.
const MaxExcerpt = 200

// ReloginHint is attached to authentication failures surfaced to callers.
const ReloginHint = "re-authenticate in the browser and save fresh credentials"

// Kind tags an error with its place in the taxonomy
type Kind int

const (
	KindUnknown Kind = iota
	KindProtocol
	KindAuthExpired
	KindAuthentication
	KindServer
	KindAPI
	KindTimeout
	KindValidation
	KindNotFound
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindProtocol:
		return "protocol"
	case KindAuthExpired:
		return "auth_expired"
	case KindAuthentication:
		return "authentication"
	case KindServer:
		return "server"
	case KindAPI:
		return "api"
	case KindTimeout:
		return "timeout"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching by kind.
var (
	ErrProtocol       = &Error{Kind: KindProtocol}
	ErrAuthExpired    = &Error{Kind: KindAuthExpired}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrServer         = &Error{Kind: KindServer}
	ErrAPI            = &Error{Kind: KindAPI}
	ErrTimeout        = &Error{Kind: KindTimeout}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrNotFound       = &Error{Kind: KindNotFound}
)

// Error is the single error type returned by the client stack.
type Error struct {
	Kind     Kind
	Op       string // operation id or domain operation name
	Status   int    // HTTP status, 0 when not applicable
	Code     int    // RPC error code from the envelope
	Excerpt  string // truncated response body
	Attempts int
	Hint     string
	Msg      string
	Err      error

	resp *http.Response
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Op != "" {
		b.WriteString(" [")
		b.WriteString(e.Op)
		b.WriteString("]")
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " (rpc code %d)", e.Code)
	}
	if e.Attempts > 0 {
		fmt.Fprintf(&b, " after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so sentinels work with errors.Is
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// HTTPResponse returns the response that produced this error, if any.
func (e *Error) HTTPResponse() *http.Response {
	return e.resp
}

// WithResponse attaches the raw response for backoff decisions.
func (e *Error) WithResponse(resp *http.Response) *Error {
	e.resp = resp
	return e
}

// KindOf returns the kind of the first *Error in the chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Protocol reports a malformed or unparseable envelope.
func Protocol(msg string, err error) *Error {
	return &Error{Kind: KindProtocol, Msg: msg, Err: err}
}

// AuthExpired reports RPC error 16 or an HTTP auth rejection.
func AuthExpired(op string) *Error {
	return &Error{Kind: KindAuthExpired, Op: op, Code: 16, Msg: "authentication expired"}
}

// Authentication reports that credential recovery is exhausted.
func Authentication(msg string, err error) *Error {
	return &Error{Kind: KindAuthentication, Msg: msg, Err: err, Hint: ReloginHint}
}

// Server reports retries exhausted against a retryable status.
func Server(op string, status, attempts int, excerpt string) *Error {
	return &Error{
		Kind:     KindServer,
		Op:       op,
		Status:   status,
		Attempts: attempts,
		Excerpt:  Truncate(excerpt),
		Msg:      "server unavailable",
	}
}

// Transport reports a connection-level failure. It shares the server kind
// so it is retried on the same budget.
func Transport(op string, err error) *Error {
	return &Error{Kind: KindServer, Op: op, Msg: "transport failure", Err: err}
}

// API reports a non-retryable non-2xx status.
func API(op string, status int, body string) *Error {
	return &Error{Kind: KindAPI, Op: op, Status: status, Excerpt: Truncate(body), Msg: "unexpected response"}
}

// Timeout reports that a single attempt exceeded its deadline.
func Timeout(op string, err error) *Error {
	return &Error{Kind: KindTimeout, Op: op, Msg: "request timed out", Err: err}
}

// Validation reports bad caller input, always before any network call.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

// NotFound reports a response that carried no payload for the operation.
func NotFound(op string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Msg: "no payload for operation"}
}

// Truncate shortens a body excerpt to MaxExcerpt bytes on a rune boundary.
func Truncate(s string) string {
	if len(s) <= MaxExcerpt {
		return s
	}
	cut := MaxExcerpt
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
