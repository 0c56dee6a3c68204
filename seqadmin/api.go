package seqadmin

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/viant/sqlite-seq/seq"
	"modernc.org/sqlite/vtab"
)

// Module provides administrative operations via a virtual table.
// Usage:
//
//	CREATE VIRTUAL TABLE seq_admin USING seq_admin(op);
//	SELECT op FROM seq_admin WHERE op MATCH 'main._seq_nums'; -- rebuild indexes
//
// Returns a single row with op='reindexed:<count>' on success, where count
// is the number of values (not datasets) indexed across all datasets of the
// shadow table.
type Module struct {
	db  *sql.DB
	log *slog.Logger
}

type Table struct {
	db  *sql.DB
	log *slog.Logger
}

type Cursor struct {
	table *Table
	rows  []string
	pos   int
}

// Register registers the seq_admin module. A nil logger discards output.
func Register(db *sql.DB, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := vtab.RegisterModule(db, "seq_admin", &Module{db: db, log: log}); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	return nil
}

func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Connect(ctx, args)
}

func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("seq_admin: need at least 3 args")
	}
	// Single TEXT column `op` reporting results.
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(op TEXT)", args[2])); err != nil {
		return nil, err
	}
	return &Table{db: m.db, log: m.log}, nil
}

func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		if c.Column == 0 && c.Op == vtab.OpMATCH {
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 1
			break
		}
	}
	return nil
}

func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }
func (t *Table) Disconnect() error           { return nil }
func (t *Table) Destroy() error              { return nil }

func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = nil
	c.pos = 0
	if idxNum != 1 || len(vals) == 0 || vals[0] == nil {
		return nil
	}
	shadow, ok := vals[0].(string)
	if !ok {
		return fmt.Errorf("seq_admin: MATCH expects shadow table name as TEXT")
	}
	n, err := Reindex(context.Background(), c.table.db, shadow)
	if err != nil {
		return err
	}
	c.table.log.Info("seq_admin: reindexed", "shadow", shadow, "values", n)
	c.rows = []string{fmt.Sprintf("reindexed:%d", n)}
	return nil
}

func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("seq_admin: Column out of range")
	}
	if col == 0 {
		return c.rows[c.pos], nil
	}
	return nil, nil
}
func (c *Cursor) Rowid() (int64, error) { return int64(c.pos + 1), nil }
func (c *Cursor) Close() error          { c.rows = nil; c.pos = 0; return nil }

// Reindex rebuilds and persists a sorted index for every dataset of the
// given shadow table, then drops cached indexes for it. It returns the
// number of values indexed.
func Reindex(ctx context.Context, db *sql.DB, shadow string) (int, error) {
	if !validShadowName(shadow) {
		return 0, fmt.Errorf("seq_admin: invalid shadow table name %q", shadow)
	}
	shadow = seq.CanonicalShadow(shadow)
	if err := seq.EnsureStorage(db); err != nil {
		return 0, err
	}
	// Later writes must drop the blobs persisted here.
	if err := seq.EnsureShadow(db, shadow); err != nil {
		return 0, err
	}
	datasets, err := listDatasets(ctx, db, shadow)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, dataset := range datasets {
		idx, err := seq.BuildIndex(ctx, db, shadow, dataset, seq.IndexSorted)
		if err != nil {
			return 0, err
		}
		if err := seq.PersistIndex(ctx, db, shadow, dataset, idx); err != nil {
			return 0, err
		}
		total += idx.Len()
	}
	seq.InvalidateCache(shadow, "")
	return total, nil
}

func listDatasets(ctx context.Context, db *sql.DB, shadow string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT DISTINCT dataset_id FROM %s ORDER BY dataset_id", shadow))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var ds string
		if err := rows.Scan(&ds); err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, rows.Err()
}

// validShadowName accepts [schema.]_seq_<name> made of identifier characters.
func validShadowName(name string) bool {
	if !strings.Contains(name, seq.ShadowPrefix) {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
