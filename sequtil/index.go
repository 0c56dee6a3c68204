package sequtil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/sqlite-seq/seq"
)

// Index provides a higher-level API on top of a seq virtual table and its
// shadow table, scoped to one dataset.
type Index struct {
	DB          *sql.DB
	VirtualName string
	ShadowName  string
	DatasetID   string
	// Column is the visible id column declared by USING seq(col); defaults to doc_id.
	Column string
}

// NewIndex constructs an Index for a given seq virtual table name and makes
// sure the storage tables, the shadow table and its invalidation triggers exist.
func NewIndex(db *sql.DB, virtualTable string, datasetID string) (*Index, error) {
	if db == nil {
		return nil, fmt.Errorf("sequtil: db is nil")
	}
	if virtualTable == "" || datasetID == "" {
		return nil, fmt.Errorf("sequtil: virtual table and dataset are required")
	}
	ix := &Index{
		DB:          db,
		VirtualName: virtualTable,
		ShadowName:  ShadowTableName(virtualTable),
		DatasetID:   datasetID,
		Column:      "doc_id",
	}
	if err := seq.EnsureStorage(db); err != nil {
		return nil, err
	}
	if err := seq.EnsureShadow(db, ix.ShadowName); err != nil {
		return nil, err
	}
	return ix, nil
}

// Entry is a single (id, value) pair of a dataset.
type Entry struct {
	ID    string
	Value int
}

// Match is a located entry with its position in ascending value order.
type Match struct {
	ID       string
	Position int
	Value    int
}

// UpsertValues upserts entries into the shadow table in one transaction.
// Triggers installed by the seq module invalidate persisted and cached
// indexes so the next lookup rebuilds them.
func (ix *Index) UpsertValues(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if ix.DB == nil {
		return fmt.Errorf("sequtil: DB is nil on Index")
	}
	tx, err := ix.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, e := range entries {
		if err := UpsertShadowValue(ctx, tx, ix.ShadowName, ix.DatasetID, e.ID, e.Value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteValues removes entries with the given ids from the shadow table.
func (ix *Index) DeleteValues(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if ix.DB == nil {
		return fmt.Errorf("sequtil: DB is nil on Index")
	}
	stmt := fmt.Sprintf("DELETE FROM %s WHERE dataset_id = ? AND id = ?", ix.ShadowName)
	for _, id := range ids {
		if _, err := ix.DB.ExecContext(ctx, stmt, ix.DatasetID, id); err != nil {
			return err
		}
	}
	return nil
}

// Locate binary searches the dataset for target through the virtual table
// MATCH. The boolean is false when target is absent.
func (ix *Index) Locate(ctx context.Context, target int) (Match, bool, error) {
	if ix.DB == nil {
		return Match{}, false, fmt.Errorf("sequtil: DB is nil on Index")
	}
	q := fmt.Sprintf("SELECT %[1]s, position FROM %[2]s WHERE dataset_id = ? AND %[1]s MATCH ?", ix.column(), ix.VirtualName)
	var m Match
	err := ix.DB.QueryRowContext(ctx, q, ix.DatasetID, target).Scan(&m.ID, &m.Position)
	if err != nil {
		if err == sql.ErrNoRows {
			return Match{}, false, nil
		}
		return Match{}, false, err
	}
	m.Value = target
	return m, true, nil
}

// Scan returns every entry of the dataset in ascending value order with its
// position, matching the positions reported by Locate.
func (ix *Index) Scan(ctx context.Context) ([]Match, error) {
	if ix.DB == nil {
		return nil, fmt.Errorf("sequtil: DB is nil on Index")
	}
	q := fmt.Sprintf("SELECT id, value FROM %s WHERE dataset_id = ? ORDER BY value, rowid", ix.ShadowName)
	rows, err := ix.DB.QueryContext(ctx, q, ix.DatasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Match
	for rows.Next() {
		m := Match{Position: len(out)}
		if err := rows.Scan(&m.ID, &m.Value); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (ix *Index) column() string {
	if ix.Column == "" {
		return "doc_id"
	}
	return ix.Column
}
