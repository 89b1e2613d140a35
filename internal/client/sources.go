package client

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
)

// DefaultTextTitle names pasted text added without a title.
const DefaultTextTitle = "Pasted Text"

// addSourceOptions is the trailing options block of an add-source call.
var addSourceOptions = []any{1, nil, nil, nil, nil, nil, nil, nil, nil, nil, []any{1}}

// GetSourceContent returns the full indexed text of a source.
func (c *Client) GetSourceContent(ctx context.Context, sourceID string) (*types.SourceContent, error) {
	sourceID = strings.TrimSpace(sourceID)
	if sourceID == "" {
		return nil, errs.Validation("source id is required")
	}

	result, err := c.Call(ctx, c.cfg.RPC.GetSource, []any{[]any{sourceID}, []any{2}, []any{2}})
	if err != nil {
		return nil, err
	}

	sc := parseSourceContent(sourceID, result)
	return &sc, nil
}

// AddURLSource adds a web page or video URL to a notebook.
func (c *Client) AddURLSource(ctx context.Context, notebookID, rawURL string) (*types.Source, error) {
	notebookID = strings.TrimSpace(notebookID)
	rawURL = strings.TrimSpace(rawURL)
	if notebookID == "" {
		return nil, errs.Validation("notebook id is required")
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errs.Validation("invalid source url %q", rawURL)
	}

	var data []any
	if isVideoURL(u) {
		data = []any{nil, nil, nil, nil, nil, nil, nil, []any{rawURL}, nil, nil, 1}
	} else {
		data = []any{nil, nil, []any{rawURL}, nil, nil, nil, nil, nil, nil, nil, 1}
	}

	return c.addSource(ctx, c.cfg.RPC.AddURLSource, notebookID, data, rawURL)
}

// AddTextSource adds pasted text to a notebook. An empty title becomes
// DefaultTextTitle.
func (c *Client) AddTextSource(ctx context.Context, notebookID, title, text string) (*types.Source, error) {
	notebookID = strings.TrimSpace(notebookID)
	if notebookID == "" {
		return nil, errs.Validation("notebook id is required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, errs.Validation("source text is required")
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTextTitle
	}

	data := []any{nil, []any{title, text}, nil, 2, nil, nil, nil, nil, nil, nil, 1}
	return c.addSource(ctx, c.cfg.RPC.AddTextSource, notebookID, data, title)
}

func (c *Client) addSource(ctx context.Context, opID, notebookID string, data []any, defaultTitle string) (*types.Source, error) {
	params := []any{[]any{data}, notebookID, []any{2}, addSourceOptions}

	result, err := c.Call(ctx, opID, params,
		WithSourcePath(notebookPath(notebookID)),
		WithTimeout(c.cfg.Timeouts.Source.Std()),
	)
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) && e.Kind == errs.KindTimeout {
			e.Hint = "the source may still have been added; list sources before retrying"
		}
		return nil, err
	}

	src, ok := parseAddedSource(result, defaultTitle)
	if !ok {
		return nil, errs.Protocol("add source response carried no source", nil)
	}
	return &src, nil
}

func isVideoURL(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}
