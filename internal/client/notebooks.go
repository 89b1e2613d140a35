package client

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
)

// ListNotebooks returns every notebook visible to the account.
func (c *Client) ListNotebooks(ctx context.Context) ([]types.Notebook, error) {
	result, err := c.Call(ctx, c.cfg.RPC.ListNotebooks, []any{nil, 1, nil, []any{2}})
	if err != nil {
		return nil, err
	}
	return parseNotebookList(result), nil
}

// GetNotebook returns one notebook with its embedded source list.
func (c *Client) GetNotebook(ctx context.Context, notebookID string) (*types.Notebook, error) {
	notebookID = strings.TrimSpace(notebookID)
	if notebookID == "" {
		return nil, errs.Validation("notebook id is required")
	}

	result, err := c.Call(ctx, c.cfg.RPC.GetNotebook,
		[]any{notebookID, nil, []any{2}, nil, 0},
		WithSourcePath(notebookPath(notebookID)),
	)
	if err != nil {
		return nil, err
	}

	nb, ok := parseNotebook(firstList(result))
	if !ok {
		return nil, errs.Protocol("notebook payload has no id", nil)
	}
	return &nb, nil
}

// ListSources returns the sources of a notebook. It is a projection of
// GetNotebook and makes the same single call.
func (c *Client) ListSources(ctx context.Context, notebookID string) ([]types.Source, error) {
	nb, err := c.GetNotebook(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	return nb.Sources, nil
}

func notebookPath(notebookID string) string {
	return "/notebook/" + notebookID
}

// firstList unwraps a payload whose first element is the record itself.
func firstList(result any) any {
	if list, ok := result.([]any); ok && len(list) > 0 {
		if inner, ok := list[0].([]any); ok {
			return inner
		}
	}
	return result
}
