// Package httpclient provides the shared resty client used for RPC posts
// and landing page fetches, with an optional per-client rate limit.
package httpclient
