// Package credentials defines the credential bundle and where it is kept.
//
// A Bundle is produced by an external login flow (a browser session) and
// consumed by the session package. FileStore keeps it as JSON in the data
// directory with owner-only permissions; MemoryStore serves tests and
// callers that manage persistence themselves.
package credentials
