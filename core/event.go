package core

import (
	"time"

	"github.com/google/uuid"
)

// EventDescriptor is the causal portion of an operation: the event the
// operation wants appended to the ledger, with the prior events it depends
// on. An empty Parents slice denotes a root event.
type EventDescriptor struct {
	ID        string    `json:"id"`
	Parents   []string  `json:"parents,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventNode is a committed, immutable entry in the event ledger. Parent
// edges always point at nodes inserted earlier, so the ledger is acyclic
// by construction.
type EventNode struct {
	ID        string    `json:"id"`
	Parents   []string  `json:"parents,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Seq       uint64    `json:"seq"`
}

// NewID generates a new unique identifier suitable for events, receipts
// and allocation references.
func NewID() string { return uuid.NewString() }
