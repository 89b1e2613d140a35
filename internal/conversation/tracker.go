package conversation

import (
	"slices"
	"sync"
	"time"

	"github.com/GriffinCanCode/NotebookRPC/internal/shared/errs"
	"github.com/GriffinCanCode/NotebookRPC/internal/shared/id"
)

// Turn is one answered question.
type Turn struct {
	Number   int
	Question string
	Answer   string
}

// Conversation is the client-side record of a multi-turn exchange.
type Conversation struct {
	ID         string
	NotebookID string
	TurnNumber int
	SourceIDs  []string
	Turns      []Turn
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Ticket is handed out before a query is sent and redeemed on success.
type Ticket struct {
	ConversationID string
	NotebookID     string
	// History holds earlier turns, oldest first.
	History []Turn
}

// Outcome is the bookkeeping result of a committed turn.
type Outcome struct {
	ConversationID string
	TurnNumber     int
	FollowUp       bool
}

// Tracker maps conversation ids to their notebook and turn counter.
// Entries live as long as the tracker.
type Tracker struct {
	mu            sync.Mutex
	conversations map[string]*Conversation
	newID         func() string
	now           func() time.Time
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{
		conversations: make(map[string]*Conversation),
		newID:         func() string { return id.NewConversationID().String() },
		now:           time.Now,
	}
}

// Begin validates a query before it is sent. An empty conversationID mints
// a new one; an unknown explicit id starts a fresh conversation under that
// id; a known id must belong to notebookID.
func (t *Tracker) Begin(conversationID, notebookID string) (Ticket, error) {
	if notebookID == "" {
		return Ticket{}, errs.Validation("notebook id is required")
	}
	if conversationID == "" {
		return Ticket{ConversationID: t.newID(), NotebookID: notebookID}, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	conv, ok := t.conversations[conversationID]
	if !ok {
		return Ticket{ConversationID: conversationID, NotebookID: notebookID}, nil
	}
	if conv.NotebookID != notebookID {
		return Ticket{}, mismatch(conversationID, conv.NotebookID, notebookID)
	}
	return Ticket{
		ConversationID: conversationID,
		NotebookID:     notebookID,
		History:        slices.Clone(conv.Turns),
	}, nil
}

// Commit records an answered turn and returns its number. Concurrent
// commits on one conversation get distinct consecutive numbers.
func (t *Tracker) Commit(ticket Ticket, sourceIDs []string, question, answer string) (Outcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	conv, ok := t.conversations[ticket.ConversationID]
	if !ok {
		conv = &Conversation{
			ID:         ticket.ConversationID,
			NotebookID: ticket.NotebookID,
			CreatedAt:  now,
		}
		t.conversations[conv.ID] = conv
	} else if conv.NotebookID != ticket.NotebookID {
		return Outcome{}, mismatch(conv.ID, conv.NotebookID, ticket.NotebookID)
	}

	conv.TurnNumber++
	conv.SourceIDs = slices.Clone(sourceIDs)
	conv.Turns = append(conv.Turns, Turn{Number: conv.TurnNumber, Question: question, Answer: answer})
	conv.UpdatedAt = now

	return Outcome{
		ConversationID: conv.ID,
		TurnNumber:     conv.TurnNumber,
		FollowUp:       conv.TurnNumber > 1,
	}, nil
}

// Get returns a copy of a conversation.
func (t *Tracker) Get(conversationID string) (Conversation, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	conv, ok := t.conversations[conversationID]
	if !ok {
		return Conversation{}, false
	}
	c := *conv
	c.SourceIDs = slices.Clone(conv.SourceIDs)
	c.Turns = slices.Clone(conv.Turns)
	return c, true
}

// Len returns the number of tracked conversations
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conversations)
}

func mismatch(conversationID, owner, requested string) error {
	return errs.Validation("conversation %s belongs to notebook %s, not %s", conversationID, owner, requested)
}
