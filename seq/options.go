package seq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/viant/sqlite-seq/index/bruteforce"
	"github.com/viant/sqlite-seq/index/sorted"

	idxapi "github.com/viant/sqlite-seq/index"
)

// Index kinds accepted by the index=... table option.
const (
	IndexAuto   = "auto"
	IndexBrute  = "brute"
	IndexSorted = "sorted"
)

// autoSortedMinValues is the dataset size from which auto switches from a
// linear scan to binary search.
const autoSortedMinValues = 16

type indexOptions struct {
	kind string
}

func parseIndexOptions(args []string) indexOptions {
	opts := indexOptions{kind: IndexAuto}
	for _, raw := range args {
		a := strings.TrimSpace(raw)
		if a == "" {
			continue
		}
		parts := strings.SplitN(a, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.ToLower(strings.Trim(strings.TrimSpace(parts[1]), `'"`))
		switch key {
		case "index":
			switch val {
			case IndexAuto, IndexBrute, IndexSorted:
				opts.kind = val
			case "binary", "bsearch":
				opts.kind = IndexSorted
			}
		}
	}
	return opts
}

// ResolveIndexKind picks the concrete index kind for a dataset of count values.
func ResolveIndexKind(kind string, count int) string {
	switch kind {
	case IndexBrute, IndexSorted:
		return kind
	}
	if count >= autoSortedMinValues {
		return IndexSorted
	}
	return IndexBrute
}

// NewIndex returns an empty index of the given concrete kind.
func NewIndex(kind string) idxapi.Index {
	if kind == IndexSorted {
		return sorted.New()
	}
	return &bruteforce.Index{}
}

// LoadIndex restores an index from a persisted blob, choosing the
// implementation from the blob header.
func LoadIndex(blob []byte) (idxapi.Index, error) {
	var idx idxapi.Index = &bruteforce.Index{}
	if sorted.IsSortedBlob(blob) {
		idx = sorted.New()
	}
	if err := idx.UnmarshalBinary(blob); err != nil {
		return nil, err
	}
	return idx, nil
}

func asInteger(v interface{}) (int, error) {
	switch val := v.(type) {
	case int64:
		return int(val), nil
	case float64:
		if val != float64(int64(val)) {
			return 0, fmt.Errorf("seq: MATCH target %v is not an integer", val)
		}
		return int(val), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, fmt.Errorf("seq: invalid MATCH integer %q: %w", val, err)
		}
		return n, nil
	case []byte:
		return asInteger(string(val))
	default:
		return 0, fmt.Errorf("seq: expected MATCH arg as INTEGER or TEXT, got %T", v)
	}
}

func asString(v interface{}) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case []byte:
		return string(val), nil
	case nil:
		return "", fmt.Errorf("seq: dataset_id is nil")
	default:
		return "", fmt.Errorf("seq: unsupported dataset_id type %T", v)
	}
}
