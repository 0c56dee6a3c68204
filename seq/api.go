package seq

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	sqlite "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"
)

// Module implements vtab.Module for the seq virtual table. It creates a
// per-table shadow store and supports MATCH-based exact lookups.
type Module struct {
	db  *sql.DB
	log *slog.Logger
}

// Table represents a single seq virtual table instance.
type Table struct {
	db        *sql.DB
	log       *slog.Logger
	dbName    string
	tableName string
	shadow    string // qualified shadow table name (e.g. "main._seq_nums")

	dbPathOnce sync.Once
	dbPathErr  error
	dbPath     string

	indexKind string // "auto" (default), "brute", or "sorted"
}

// Option configures Register.
type Option func(*Module)

// WithLogger routes index build and invalidation events to log.
func WithLogger(log *slog.Logger) Option {
	return func(m *Module) {
		if log != nil {
			m.log = log
		}
	}
}

var registerInvalidateOnce sync.Once

const (
	idxDatasetScan = iota
	idxDatasetMatch
)

type resultRow struct {
	rowid    int64
	dataset  string
	id       string
	position int64
}

// Cursor scans results from a seq table.
type Cursor struct {
	table   *Table
	rows    []resultRow
	pos     int
	dataset string
}

// Register registers the seq virtual table module with the provided *sql.DB.
func Register(db *sql.DB, opts ...Option) error {
	mod := &Module{db: db, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(mod)
	}
	if err := vtab.RegisterModule(db, "seq", mod); err != nil {
		if !strings.Contains(err.Error(), "already registered") {
			return err
		}
	}
	// Register seq_invalidate globally for new connections; idempotent.
	registerInvalidateOnce.Do(func() { _ = sqlite.RegisterDeterministicScalarFunction("seq_invalidate", 2, invalidateFunc) })
	return nil
}

// Create initializes a seq table instance.
func (m *Module) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CREATE")
}

// Connect attaches to an existing seq table instance.
func (m *Module) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.connect(ctx, args, "CONNECT")
}

func (m *Module) connect(ctx vtab.Context, args []string, op string) (vtab.Table, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("seq: %s expects at least 3 args, got %d", op, len(args))
	}
	if err := ctx.EnableConstraintSupport(); err != nil {
		return nil, fmt.Errorf("seq: EnableConstraintSupport failed: %w", err)
	}
	// Determine declared column name from args (e.g. USING seq(value)).
	col := "doc_id"
	optStart := 3
	if len(args) > 3 {
		a := strings.TrimSpace(args[3])
		if a != "" && !strings.Contains(a, "=") {
			col = a
			optStart = 4
		}
	}
	if err := ctx.Declare(fmt.Sprintf("CREATE TABLE %s(dataset_id TEXT, %s TEXT, position INTEGER HIDDEN)", args[2], col)); err != nil {
		return nil, err
	}
	opts := parseIndexOptions(args[optStart:])
	t := &Table{db: m.db, log: m.log, dbName: args[1], tableName: args[2], indexKind: opts.kind}
	// Initialize shadow name eagerly so subsequent statements on the same connection work.
	t.shadow = t.qualifiedShadow()
	// Defer sequence_storage creation until first use to avoid cross-connection DDL during xCreate.
	return t, nil
}

// BestIndex pushes down dataset_id equality and MATCH on the id column.
func (t *Table) BestIndex(info *vtab.IndexInfo) error {
	var (
		datasetConstraint *vtab.Constraint
		matchConstraint   *vtab.Constraint
	)
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable {
			continue
		}
		switch {
		case c.Column == 0 && c.Op == vtab.OpEQ:
			datasetConstraint = c
		case c.Column == 1 && c.Op == vtab.OpMATCH:
			matchConstraint = c
		}
	}
	if datasetConstraint == nil {
		if matchConstraint != nil {
			return fmt.Errorf("seq: dataset_id constraint is required with MATCH")
		}
		return fmt.Errorf("seq: dataset_id constraint required")
	}
	datasetConstraint.ArgIndex = 0
	datasetConstraint.Omit = true
	if matchConstraint == nil {
		info.IdxNum = idxDatasetScan
		return nil
	}
	matchConstraint.ArgIndex = 1
	matchConstraint.Omit = true
	info.IdxNum = idxDatasetMatch
	return nil
}

// Open allocates a new cursor.
func (t *Table) Open() (vtab.Cursor, error) { return &Cursor{table: t}, nil }

// Disconnect cleans up per-connection resources.
func (t *Table) Disconnect() error { return nil }

// Destroy drops nothing; the shadow table persists.
func (t *Table) Destroy() error { return nil }

// Filter computes the result set based on idxNum/vals.
func (c *Cursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	_ = idxStr
	c.rows = nil
	c.pos = 0
	c.dataset = ""
	if c.table == nil || c.table.db == nil {
		return nil
	}
	ctx := context.Background()

	switch idxNum {
	case idxDatasetScan:
		if len(vals) == 0 || vals[0] == nil {
			return fmt.Errorf("seq: dataset_id argument is required")
		}
		dataset, err := asString(vals[0])
		if err != nil {
			return err
		}
		c.dataset = dataset
		q := fmt.Sprintf("SELECT rowid, id FROM %s WHERE dataset_id = ? ORDER BY value, rowid", c.table.shadow)
		rows, err := c.table.db.QueryContext(ctx, q, dataset)
		if err != nil {
			return err
		}
		defer rows.Close()
		var out []resultRow
		for rows.Next() {
			r := resultRow{dataset: dataset, position: int64(len(out))}
			if err := rows.Scan(&r.rowid, &r.id); err != nil {
				return err
			}
			out = append(out, r)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		c.rows = out
		return nil
	case idxDatasetMatch:
		if len(vals) < 2 || vals[0] == nil || vals[1] == nil {
			return fmt.Errorf("seq: dataset_id and MATCH arguments are required")
		}
		dataset, err := asString(vals[0])
		if err != nil {
			return err
		}
		c.dataset = dataset
		target, err := asInteger(vals[1])
		if err != nil {
			return err
		}
		idx, err := c.table.ensureIndex(ctx, dataset)
		if err != nil {
			return err
		}
		id, position, err := idx.Query(target)
		if err != nil {
			return err
		}
		if position < 0 {
			return nil
		}
		rid, err := c.table.lookupRow(ctx, dataset, id)
		if err != nil {
			return err
		}
		if rid == 0 {
			return nil
		}
		c.rows = []resultRow{{rowid: rid, dataset: dataset, id: id, position: int64(position)}}
		return nil
	default:
		return fmt.Errorf("seq: unsupported query plan")
	}
}

// Next advances the cursor.
func (c *Cursor) Next() error {
	if c.pos < len(c.rows) {
		c.pos++
	}
	return nil
}

// Eof reports end-of-rows.
func (c *Cursor) Eof() bool { return c.pos >= len(c.rows) }

// Column returns the value of a column in the current row.
func (c *Cursor) Column(col int) (vtab.Value, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return nil, fmt.Errorf("seq: Column out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	switch col {
	case 0:
		return c.rows[c.pos].dataset, nil
	case 1:
		return c.rows[c.pos].id, nil
	case 2:
		return c.rows[c.pos].position, nil
	}
	return nil, fmt.Errorf("seq: unsupported column %d", col)
}

// Rowid returns the current rowid.
func (c *Cursor) Rowid() (int64, error) {
	if c.pos < 0 || c.pos >= len(c.rows) {
		return 0, fmt.Errorf("seq: Rowid out of range (pos=%d,len=%d)", c.pos, len(c.rows))
	}
	return c.rows[c.pos].rowid, nil
}

// Close releases resources.
func (c *Cursor) Close() error { c.rows = nil; c.pos = 0; return nil }

// invalidateFunc implements SQL scalar seq_invalidate(shadow TEXT, dataset TEXT) → INT.
func invalidateFunc(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) != 2 || args[0] == nil {
		return int64(0), nil
	}
	shadow, err := asString(args[0])
	if err != nil {
		return int64(0), nil
	}
	dataset, err := asString(args[1])
	if err != nil {
		return int64(0), nil
	}
	return int64(InvalidateCache(shadow, dataset)), nil
}

// lookupRow resolves rowid for a given dataset/id pair.
func (t *Table) lookupRow(ctx context.Context, dataset, id string) (int64, error) {
	q := fmt.Sprintf("SELECT rowid FROM %s WHERE dataset_id = ? AND id = ?", t.shadow)
	var rid int64
	if err := t.db.QueryRowContext(ctx, q, dataset, id).Scan(&rid); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, err
	}
	return rid, nil
}
