package client

import (
	"context"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/protocol"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
)

type callOptions struct {
	timeout    time.Duration
	sourcePath string
}

// CallOption configures a single Call.
type CallOption func(*callOptions)

// WithTimeout bounds each HTTP attempt of the call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) { o.timeout = d }
}

// WithSourcePath sets the page path the call claims to come from.
func WithSourcePath(path string) CallOption {
	return func(o *callOptions) { o.sourcePath = path }
}

// Call invokes one batchexecute RPC and returns its decoded result.
//
// Expired authentication is recovered transparently (CSRF refresh first,
// then a reload from the credential store); retryable statuses back off
// per the retry policy. Anything else is returned as a typed error.
func (c *Client) Call(ctx context.Context, opID string, params any, opts ...CallOption) (any, error) {
	if opID == "" {
		return nil, errs.Validation("operation id is required")
	}

	o := callOptions{timeout: c.cfg.Timeouts.Default.Std(), sourcePath: "/"}
	for _, opt := range opts {
		opt(&o)
	}

	return c.execute(ctx, exchange{
		op:      opID,
		timeout: o.timeout,
		build: func(b credentials.Bundle) (string, string, error) {
			body, err := protocol.EncodeRequest(opID, params, b.CSRFToken)
			if err != nil {
				return "", "", err
			}
			return c.endpoints.Batch(opID, b.SessionID, o.sourcePath), body, nil
		},
		decode: func(raw string) (any, error) {
			return protocol.DecodeResponse(raw, opID)
		},
	})
}
