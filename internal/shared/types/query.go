package types

import "time"

// QueryRequest asks a question against a notebook
type QueryRequest struct {
	NotebookID string
	Text       string
	// SourceIDs limits the answer to these sources; nil means all sources.
	SourceIDs []string
	// ConversationID continues an earlier conversation when set.
	ConversationID string
	// Timeout bounds each HTTP attempt; zero uses the configured default.
	Timeout time.Duration
}

// QueryResult is the answer plus conversation bookkeeping
type QueryResult struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	TurnNumber     int    `json:"turn_number"`
	IsFollowUp     bool   `json:"is_follow_up"`
}
