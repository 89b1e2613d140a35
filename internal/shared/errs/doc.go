// Package errs defines the error taxonomy shared by the codec, session and client.
//
// Every failure is an *Error tagged with a Kind:
//   - Protocol: malformed envelope, never retried
//   - AuthExpired: RPC error 16, recovered inside the client
//   - Authentication: recovery exhausted, caller must re-login
//   - Server: 429/5xx retries exhausted
//   - API: any other non-2xx status
//   - Timeout: a single attempt exceeded its deadline
//   - Validation: bad input, checked before any network call
//   - NotFound: the envelope carried no payload for the operation
//
// Example Usage:
//
//	if errors.Is(err, errs.ErrAuthentication) {
//	    var e *errs.Error
//	    errors.As(err, &e)
//	    fmt.Println(e.Hint)
//	}
package errs
