package index

// Index defines an integer position index with basic lifecycle methods.
// It enables building from (id, value) pairs, exact-value lookups, and
// binary serialization for persistence.
type Index interface {
	// Build constructs the index from the given ids and values. ids and values
	// must have the same length. Pairs are ordered ascending by value; pairs
	// with equal values keep their input order.
	Build(ids []string, values []int) error

	// Query looks up target and returns the id stored at the matching
	// position together with that position in ascending value order. When
	// target is absent it returns an empty id and position -1.
	Query(target int) (id string, position int, err error)

	// Len reports the number of indexed pairs.
	Len() int

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs the index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}
