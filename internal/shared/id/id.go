// Package id generates identifiers for requests and conversations.
//
// Request IDs are prefixed ULIDs: sortable, so log lines from one client
// read in order, and prefixed so they are recognisable in mixed logs.
// Conversation IDs are random UUIDs because the service expects that
// shape in the query envelope.
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// RequestID identifies one logical RPC call across its retries
type RequestID string

// ConversationID identifies a multi-turn query thread
type ConversationID string

// RequestPrefix marks request IDs in logs
const RequestPrefix = "req"

// Generator generates ULIDs from a guarded entropy source
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{entropy: entropy}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// NewRequestID generates a prefixed request ID
func (g *Generator) NewRequestID() RequestID {
	return RequestID(fmt.Sprintf("%s_%s", RequestPrefix, g.Generate().String()))
}

// NewConversationID generates a random conversation ID
func NewConversationID() ConversationID {
	return ConversationID(uuid.NewString())
}

func (id RequestID) String() string      { return string(id) }
func (id ConversationID) String() string { return string(id) }

// Timestamp extracts the creation time from a request ID
func (id RequestID) Timestamp() (time.Time, error) {
	raw := strings.TrimPrefix(string(id), RequestPrefix+"_")
	parsed, err := ulid.Parse(raw)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}

// IsConversationID reports whether s parses as a UUID
func IsConversationID(s string) bool {
	return uuid.Validate(s) == nil
}
