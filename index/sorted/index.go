package sorted

import (
	"errors"

	"github.com/viant/sqlite-seq/bsearch"
	"github.com/viant/sqlite-seq/index/bruteforce"
)

// magic prefixes the serialized form so persisted blobs can be told apart
// from the bruteforce format.
const magic = "SRT1"

// Index answers lookups with bsearch.Search. It serializes using the
// bruteforce encoding behind a magic prefix.
type Index struct {
	ids    []string
	values []int
}

// New returns an empty sorted index.
func New() *Index { return &Index{} }

// Build orders the pairs ascending by value.
func (i *Index) Build(ids []string, values []int) error {
	if len(ids) != len(values) {
		return errors.New("sorted: ids/values length mismatch")
	}
	if len(ids) == 0 {
		i.ids, i.values = nil, nil
		return nil
	}
	i.ids, i.values = bruteforce.Order(ids, values)
	return nil
}

// Query binary searches for target. With duplicate values any matching
// position may be returned.
func (i *Index) Query(target int) (string, int, error) {
	pos := bsearch.Search(i.values, target)
	if pos == bsearch.NotFound {
		return "", bsearch.NotFound, nil
	}
	return i.ids[pos], pos, nil
}

// Len returns the number of indexed pairs.
func (i *Index) Len() int { return len(i.values) }

// MarshalBinary writes the magic prefix followed by the bruteforce format.
func (i *Index) MarshalBinary() ([]byte, error) {
	return append([]byte(magic), bruteforce.Encode(i.ids, i.values)...), nil
}

// UnmarshalBinary loads data written by MarshalBinary.
func (i *Index) UnmarshalBinary(data []byte) error {
	if !IsSortedBlob(data) {
		return errors.New("sorted: missing header")
	}
	ids, values, err := bruteforce.Decode(data[len(magic):])
	if err != nil {
		return err
	}
	return i.Build(ids, values)
}

// IsSortedBlob reports whether blob was produced by Index.MarshalBinary.
func IsSortedBlob(blob []byte) bool {
	return len(blob) >= len(magic) && string(blob[:len(magic)]) == magic
}
