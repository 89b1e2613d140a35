/*
Package client is the RPC client for the notebook service.

# Overview

Every non-streaming operation goes through Call, which encodes one
batchexecute request, posts it, and decodes the matching result. Query
uses the streaming endpoint but shares the same execution path.

# Failure handling

For one logical call:

  - an expired session (RPC error 16, HTTP 401 or 403) triggers a CSRF
    refresh and one retry, then a reload from the credential store and one
    more retry; after that the call fails with an authentication error
    carrying a re-login hint
  - 429, 500, 502, 503 and 504 back off 1s, 2s, 4s (capped at 16s) for
    three retries, then fail with a server error
  - other non-2xx statuses fail immediately with an API error
  - an attempt that exceeds its timeout fails with a timeout error and is
    not retried

# Usage

	store := credentials.NewFileStore(cfg.Store.CredentialsPath())
	sess, err := session.Open(ctx, store, session.WithService(cfg.Service))
	if err != nil {
		return err
	}
	c := client.New(sess, client.WithConfig(cfg), client.WithLogger(logger))

	answer, err := c.Query(ctx, types.QueryRequest{NotebookID: id, Text: "Summarize"})
*/
package client
