package engine

import (
	"database/sql"
	"database/sql/driver"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/viant/sqlite-seq/bsearch"
	sqlite "modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterSearchFunctions registers the seq_* scalar functions with the driver
// so they are available on new connections opened after this call:
//
//	seq_search(blob, target)     any index of target or -1
//	seq_first(blob, target)      leftmost index of target or -1
//	seq_last(blob, target)       rightmost index of target or -1
//	seq_insert_pos(blob, target) insertion point keeping blob sorted
//	seq_sorted(blob)             1 when blob is ascending, else 0
//
// Note: existing open connections will not see new functions.
func RegisterSearchFunctions(_ *sql.DB) error {
	registerOnce.Do(func() {
		for _, fn := range []struct {
			name  string
			nArg  int32
			xFunc func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error)
		}{
			{"seq_search", 2, searchFunc("seq_search", bsearch.Search)},
			{"seq_first", 2, searchFunc("seq_first", bsearch.FirstOccurrence)},
			{"seq_last", 2, searchFunc("seq_last", bsearch.LastOccurrence)},
			{"seq_insert_pos", 2, searchFunc("seq_insert_pos", bsearch.InsertPosition)},
			{"seq_sorted", 1, seqSortedImpl},
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(fn.name, fn.nArg, fn.xFunc); err != nil {
				if !strings.Contains(err.Error(), "already registered") {
					registerErr = err
					return
				}
			}
		}
	})
	return registerErr
}

func searchFunc(name string, search func([]int, int) int) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		if args[0] == nil || args[1] == nil {
			return nil, nil
		}
		values, err := asSequence(args[0])
		if err != nil {
			return nil, err
		}
		target, err := asInteger(args[1])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return int64(search(values, target)), nil
	}
}

func seqSortedImpl(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("seq_sorted: expected 1 argument, got %d", len(args))
	}
	if args[0] == nil {
		return nil, nil
	}
	values, err := asSequence(args[0])
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(values); i++ {
		if values[i-1] > values[i] {
			return int64(0), nil
		}
	}
	return int64(1), nil
}

func asSequence(arg driver.Value) ([]int, error) {
	switch v := arg.(type) {
	case []byte:
		return decodeSequence(v)
	default:
		return nil, fmt.Errorf("seq: unsupported argument type %T for sequence; want BLOB", arg)
	}
}

func asInteger(arg driver.Value) (int, error) {
	switch v := arg.(type) {
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("target %v is not an integer", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid integer target %q: %w", v, err)
		}
		return n, nil
	case []byte:
		return asInteger(string(v))
	default:
		return 0, fmt.Errorf("unsupported target type %T", arg)
	}
}

// Local minimal decoder to avoid import cycles in tests.
func decodeSequence(b []byte) ([]int, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("seq: invalid sequence blob length %d", len(b))
	}
	n := len(b) / 8
	v := make([]int, n)
	for i := 0; i < n; i++ {
		v[i] = int(int64(binary.LittleEndian.Uint64(b[i*8:])))
	}
	return v, nil
}
