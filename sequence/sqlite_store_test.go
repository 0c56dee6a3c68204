package sequence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/viant/sqlite-seq/engine"
)

// TestSQLiteStore_AddLocateRemove exercises SQLiteStore: inserting
// sequences, binary-search lookups, and removal.
func TestSQLiteStore_AddLocateRemove(t *testing.T) {
	db, err := engine.Open(":memory:")
	if err != nil {
		t.Fatalf("engine.Open(:memory:) failed: %v", err)
	}
	defer db.Close()
	// An in-memory database is per connection.
	db.SetMaxOpenConns(1)

	store, err := NewSQLiteStore(db)
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}

	ctx := context.Background()
	seqs := []Sequence{
		{ID: "s1", Label: "ascending", Values: []int{0, 1, 2, 3, 4, 5, 6, 77}},
		{ID: "s2", Label: "unsorted input", Values: []int{12354, 22, 1001, 55, 41}},
		{ID: "s3", Label: "empty"},
	}
	ids, err := store.AddSequences(ctx, seqs)
	if err != nil {
		t.Fatalf("AddSequences failed: %v", err)
	}
	if len(ids) != len(seqs) {
		t.Fatalf("AddSequences returned %d ids, want %d", len(ids), len(seqs))
	}

	got, err := store.Get(ctx, "s2")
	if err != nil {
		t.Fatalf("Get(s2) failed: %v", err)
	}
	if diff := cmp.Diff([]int{22, 41, 55, 1001, 12354}, got.Values); diff != "" {
		t.Fatalf("stored values not normalized (-want +got):\n%s", diff)
	}

	testCases := []struct {
		id     string
		target int
		expect int
	}{
		{id: "s1", target: 77, expect: 7},
		{id: "s1", target: 8, expect: -1},
		{id: "s2", target: 0, expect: -1},
		{id: "s2", target: 1001, expect: 3},
		{id: "s3", target: 5, expect: -1},
	}
	for _, tc := range testCases {
		pos, err := store.Locate(ctx, tc.id, tc.target)
		if err != nil {
			t.Fatalf("Locate(%s, %d) failed: %v", tc.id, tc.target, err)
		}
		if pos != tc.expect {
			t.Errorf("Locate(%s, %d) = %d, want %d", tc.id, tc.target, pos, tc.expect)
		}
	}

	if err := store.Remove(ctx, "s1"); err != nil {
		t.Fatalf("Remove(s1) failed: %v", err)
	}
	if _, err := store.Locate(ctx, "s1", 77); !errors.Is(err, ErrUnknownSequence) {
		t.Fatalf("Locate after remove = %v, want ErrUnknownSequence", err)
	}
	if err := store.Remove(ctx, ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := store.AddSequences(ctx, []Sequence{{Values: []int{1}}}); err == nil {
		t.Fatalf("expected error for empty sequence id")
	}
}
