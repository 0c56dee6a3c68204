package bruteforce

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
)

// Index is a simple linear-scan index over ascending (id, value) pairs.
type Index struct {
	ids    []string
	values []int
}

// Build copies ids and values and orders the pairs ascending by value.
func (i *Index) Build(ids []string, values []int) error {
	if len(ids) != len(values) {
		return fmt.Errorf("bruteforce: ids and values length mismatch: %d != %d", len(ids), len(values))
	}
	if len(ids) == 0 {
		i.ids, i.values = nil, nil
		return nil
	}
	i.ids, i.values = Order(ids, values)
	return nil
}

// Query returns the first position holding target.
func (i *Index) Query(target int) (string, int, error) {
	for pos, v := range i.values {
		if v == target {
			return i.ids[pos], pos, nil
		}
		if v > target {
			break
		}
	}
	return "", -1, nil
}

// Len returns the number of indexed pairs.
func (i *Index) Len() int { return len(i.values) }

// Values returns the ascending values. The slice must not be modified.
func (i *Index) Values() []int { return i.values }

// IDs returns ids in ascending value order. The slice must not be modified.
func (i *Index) IDs() []string { return i.ids }

// Order returns copies of ids and values with the pairs sorted ascending by
// value. Pairs with equal values keep their input order.
func Order(ids []string, values []int) ([]string, []int) {
	perm := make([]int, len(values))
	for k := range perm {
		perm[k] = k
	}
	sort.SliceStable(perm, func(a, b int) bool { return values[perm[a]] < values[perm[b]] })
	outIDs := make([]string, len(perm))
	outValues := make([]int, len(perm))
	for k, p := range perm {
		outIDs[k] = ids[p]
		outValues[k] = values[p]
	}
	return outIDs, outValues
}

// MarshalBinary stores: n(uint32), then for each item:
// idLen(uint32), id bytes, value(int64).
func (i *Index) MarshalBinary() ([]byte, error) {
	return Encode(i.ids, i.values), nil
}

// UnmarshalBinary restores the index from bytes.
func (i *Index) UnmarshalBinary(data []byte) error {
	ids, values, err := Decode(data)
	if err != nil {
		return err
	}
	return i.Build(ids, values)
}

// Encode writes pairs in the bruteforce binary format.
func Encode(ids []string, values []int) []byte {
	size := 4
	for _, id := range ids {
		size += 4 + len(id) + 8
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(ids)))
	for idx, id := range ids {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
		out = binary.LittleEndian.AppendUint64(out, uint64(int64(values[idx])))
	}
	return out
}

// Decode reads pairs written by Encode.
func Decode(data []byte) ([]string, []int, error) {
	if len(data) < 4 {
		return nil, nil, errors.New("bruteforce: invalid data")
	}
	off := 0
	getU32 := func() uint32 { v := binary.LittleEndian.Uint32(data[off : off+4]); off += 4; return v }
	n := int(getU32())
	if n > (len(data)-off)/12 {
		return nil, nil, errors.New("bruteforce: truncated")
	}
	ids := make([]string, n)
	values := make([]int, n)
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return nil, nil, errors.New("bruteforce: truncated")
		}
		idlen := int(getU32())
		if off+idlen > len(data) {
			return nil, nil, errors.New("bruteforce: truncated id")
		}
		ids[idx] = string(data[off : off+idlen])
		off += idlen
		if off+8 > len(data) {
			return nil, nil, errors.New("bruteforce: truncated value")
		}
		values[idx] = int(int64(binary.LittleEndian.Uint64(data[off : off+8])))
		off += 8
	}
	return ids, values, nil
}
