package sequence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/viant/sqlite-seq/bsearch"
)

// ErrUnknownSequence is returned when a sequence ID is not stored.
var ErrUnknownSequence = errors.New("sequence: unknown sequence")

// SQLiteStore is an implementation of Store that keeps each sequence as an
// encoded BLOB in the sequences table. Lookups decode the BLOB and binary
// search it in Go.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed Store. It ensures the base
// sequences schema exists in the provided database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sequence: db is nil")
	}
	if err := EnsureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// AddSequences inserts or replaces sequences in one transaction.
// Sequence.ID must be non-empty.
func (s *SQLiteStore) AddSequences(ctx context.Context, seqs []Sequence) ([]string, error) {
	if len(seqs) == 0 {
		return nil, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO sequences(id, label, payload) VALUES(?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	ids := make([]string, 0, len(seqs))
	for _, sq := range seqs {
		if sq.ID == "" {
			return nil, fmt.Errorf("sequence: Sequence.ID must be set in AddSequences")
		}
		payload, err := EncodeSequence(Normalize(sq.Values))
		if err != nil {
			return nil, err
		}
		if _, err := stmt.ExecContext(ctx, sq.ID, sq.Label, payload); err != nil {
			return nil, err
		}
		ids = append(ids, sq.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// Get loads a sequence by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Sequence, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var (
		label   sql.NullString
		payload []byte
	)
	err := s.db.QueryRowContext(ctx, `SELECT label, payload FROM sequences WHERE id = ?`, id).Scan(&label, &payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSequence, id)
		}
		return nil, err
	}
	values, err := DecodeSequence(payload)
	if err != nil {
		return nil, err
	}
	return &Sequence{ID: id, Label: label.String, Values: values}, nil
}

// Locate binary searches the stored sequence for target.
func (s *SQLiteStore) Locate(ctx context.Context, id string, target int) (int, error) {
	sq, err := s.Get(ctx, id)
	if err != nil {
		return bsearch.NotFound, err
	}
	return bsearch.Search(sq.Values, target), nil
}

// Remove deletes a sequence by ID.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("sequence: Remove called with empty id")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	_, err := s.db.ExecContext(ctx, `DELETE FROM sequences WHERE id = ?`, id)
	return err
}

// Ensure SQLiteStore satisfies the Store interface.
var _ Store = (*SQLiteStore)(nil)
