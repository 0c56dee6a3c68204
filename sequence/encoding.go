package sequence

import (
	"encoding/binary"
	"fmt"
)

// EncodeSequence encodes a slice of integers into a BLOB representation
// suitable for storage in SQLite. The encoding is a little-endian sequence of
// int64 values without a length prefix; the length is derived from the BLOB
// size on decode.
func EncodeSequence(values []int) ([]byte, error) {
	if len(values) == 0 {
		return nil, nil
	}
	b := make([]byte, len(values)*8)
	for i, v := range values {
		binary.LittleEndian.PutUint64(b[i*8:], uint64(int64(v)))
	}
	return b, nil
}

// DecodeSequence decodes a BLOB produced by EncodeSequence back into a slice
// of integers.
func DecodeSequence(b []byte) ([]int, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("sequence: invalid blob length %d (not multiple of 8)", len(b))
	}
	n := len(b) / 8
	values := make([]int, n)
	for i := 0; i < n; i++ {
		values[i] = int(int64(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return values, nil
}
