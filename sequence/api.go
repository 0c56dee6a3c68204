package sequence

import (
	"context"
)

// Sequence represents a named ascending sequence of integers stored in the
// sequence store.
type Sequence struct {
	// ID is the logical identifier of the sequence.
	ID string

	// Label is a free-form description kept alongside the values.
	Label string

	// Values holds the integers. Stores keep them in ascending order.
	Values []int
}

// Store defines the application-level sequence store API. Implementations in
// this module use SQLite for durable storage and binary search for lookups.
type Store interface {
	// AddSequences inserts sequences into the store and returns their IDs.
	// Values are normalized to ascending order before they are persisted.
	AddSequences(ctx context.Context, seqs []Sequence) ([]string, error)

	// Get loads a stored sequence by ID.
	Get(ctx context.Context, id string) (*Sequence, error)

	// Locate returns the position of target within the stored sequence, or -1
	// when the value is absent. An unknown sequence ID is an error.
	Locate(ctx context.Context, id string, target int) (int, error)

	// Remove deletes the sequence with the given ID.
	Remove(ctx context.Context, id string) error
}
