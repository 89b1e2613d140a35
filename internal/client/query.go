package client

import (
	"context"
	"strings"

	"github.com/GriffinCanCode/NotebookRPC/internal/conversation"
	"github.com/GriffinCanCode/NotebookRPC/internal/credentials"
	"github.com/GriffinCanCode/NotebookRPC/internal/protocol"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/types"
	"go.uber.org/zap"
)

// queryOp labels streaming queries in logs and metrics.
const queryOp = "query"

// History roles in the query envelope.
const (
	roleUser      = 1
	roleAssistant = 2
)

// Query asks a question against a notebook's sources.
//
// Without SourceIDs every source of the notebook is used, which costs one
// GetNotebook call first. A ConversationID continues that conversation and
// must belong to the same notebook; this is checked before any network
// call. The turn is recorded only once an answer arrives.
func (c *Client) Query(ctx context.Context, req types.QueryRequest) (*types.QueryResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, errs.Validation("query text is required")
	}
	ticket, err := c.tracker.Begin(req.ConversationID, strings.TrimSpace(req.NotebookID))
	if err != nil {
		return nil, err
	}

	sourceIDs := req.SourceIDs
	if sourceIDs == nil {
		nb, err := c.GetNotebook(ctx, ticket.NotebookID)
		if err != nil {
			return nil, err
		}
		sourceIDs = nb.SourceIDs()
	}

	params := queryParams(sourceIDs, req.Text, ticket)
	reqID := c.nextReqID()
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.cfg.Timeouts.Query.Std()
	}

	result, err := c.execute(ctx, exchange{
		op:      queryOp,
		timeout: timeout,
		build: func(b credentials.Bundle) (string, string, error) {
			body, err := protocol.EncodeQuery(params, b.CSRFToken)
			if err != nil {
				return "", "", err
			}
			return c.endpoints.Query(b.SessionID, reqID), body, nil
		},
		decode: func(raw string) (any, error) {
			return protocol.DecodeQueryStream(raw)
		},
	})
	if err != nil {
		return nil, err
	}
	answer, _ := result.(string)

	out, err := c.tracker.Commit(ticket, sourceIDs, req.Text, answer)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordQuery(out.FollowUp, c.tracker.Len())
	c.logger.Debug("query answered",
		zap.String("conversation_id", out.ConversationID),
		zap.Int("turn", out.TurnNumber),
	)

	return &types.QueryResult{
		Answer:         answer,
		ConversationID: out.ConversationID,
		TurnNumber:     out.TurnNumber,
		IsFollowUp:     out.FollowUp,
	}, nil
}

// queryParams builds [sources, text, history, options, conversation id].
func queryParams(sourceIDs []string, text string, ticket conversation.Ticket) []any {
	sources := make([]any, 0, len(sourceIDs))
	for _, id := range sourceIDs {
		sources = append(sources, []any{[]any{id}})
	}

	var history any
	if len(ticket.History) > 0 {
		turns := make([]any, 0, 2*len(ticket.History))
		for _, t := range ticket.History {
			turns = append(turns,
				[]any{t.Answer, nil, roleAssistant},
				[]any{t.Question, nil, roleUser},
			)
		}
		history = turns
	}

	return []any{sources, text, history, []any{2, nil, []any{1}}, ticket.ConversationID}
}
