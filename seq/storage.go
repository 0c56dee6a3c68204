package seq

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	idxapi "github.com/viant/sqlite-seq/index"
)

const (
	// StorageTable holds persisted index blobs per shadow table and dataset.
	StorageTable = "sequence_storage"
	// LockTable coordinates index builds across processes.
	LockTable = "sequence_storage_locks"
	// ShadowPrefix prefixes the shadow table of every seq virtual table.
	ShadowPrefix = "_seq_"
)

// ShadowTableDDL returns the DDL of a seq shadow table.
func ShadowTableDDL(shadow string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    dataset_id TEXT NOT NULL,
    id TEXT NOT NULL,
    value INTEGER NOT NULL,
    PRIMARY KEY(dataset_id, id)
);
`, shadow)
}

// EnsureStorage creates the sequence_storage and lock tables if missing.
func EnsureStorage(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("seq: db is nil")
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sequence_storage (
    shadow_table_name TEXT NOT NULL,
    dataset_id        TEXT NOT NULL DEFAULT '',
    "index"           BLOB,
    PRIMARY KEY (shadow_table_name, dataset_id)
)`); err != nil {
		return err
	}
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS sequence_storage_locks (
    shadow_table_name TEXT NOT NULL,
    dataset_id        TEXT NOT NULL DEFAULT '',
    owner             TEXT NOT NULL,
    locked_at         INTEGER NOT NULL,
    PRIMARY KEY (shadow_table_name, dataset_id)
)`)
	return err
}

// ensureShadow ensures the per-table shadow table and its invalidation
// triggers exist.
func (t *Table) ensureShadow() error {
	t.shadow = t.qualifiedShadow()
	return EnsureShadow(t.db, t.shadow)
}

// EnsureShadow creates the shadow table and the triggers that drop the
// persisted and cached index of a dataset on every write. Every writer of a
// shadow table calls it before its first write so no index goes stale.
func EnsureShadow(db *sql.DB, shadow string) error {
	if db == nil {
		return fmt.Errorf("seq: db is nil")
	}
	shadow = CanonicalShadow(shadow)
	if tableNameFromShadow(shadow) == "" {
		return fmt.Errorf("seq: invalid shadow table name %q", shadow)
	}
	if _, err := db.Exec(ShadowTableDDL(shadow)); err != nil {
		return err
	}
	// Triggers live in the shadow's schema and name the table unqualified.
	schema, table := "", shadow
	if i := strings.LastIndex(shadow, "."); i >= 0 {
		schema, table = shadow[:i+1], shadow[i+1:]
	}
	trigBase := schema + sanitizeName("trg_seq_"+shadow)
	shadowLit := quoteLiteral(shadow)
	delNew := `DELETE FROM sequence_storage WHERE shadow_table_name = ` + shadowLit + ` AND dataset_id = NEW.dataset_id;`
	invNew := `SELECT seq_invalidate(` + shadowLit + `, NEW.dataset_id);`
	delOld := `DELETE FROM sequence_storage WHERE shadow_table_name = ` + shadowLit + ` AND dataset_id = OLD.dataset_id;`
	invOld := `SELECT seq_invalidate(` + shadowLit + `, OLD.dataset_id);`
	stmts := []string{
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_ins AFTER INSERT ON %s BEGIN %s %s END;`, trigBase, table, delNew, invNew),
		// Invalidate both NEW and OLD datasets (handles dataset moves).
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_upd AFTER UPDATE ON %s BEGIN %s %s %s %s END;`, trigBase, table, delNew, invNew, delOld, invOld),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s_del AFTER DELETE ON %s BEGIN %s %s END;`, trigBase, table, delOld, invOld),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CanonicalShadow returns the name under which a shadow table is stored in
// sequence_storage. Shadows of the main schema are unqualified, so
// "main._seq_nums" and "_seq_nums" name the same rows.
func CanonicalShadow(shadow string) string {
	shadow = strings.TrimSpace(shadow)
	if rest, ok := strings.CutPrefix(shadow, "main."); ok {
		return rest
	}
	return shadow
}

// qualifiedShadow returns the shadow table name, qualified only outside the
// main schema.
func (t *Table) qualifiedShadow() string {
	base := ShadowPrefix + t.tableName
	if db := strings.TrimSpace(t.dbName); db == "" || db == "main" {
		return base
	}
	return t.dbName + "." + base
}

func tableNameFromShadow(shadow string) string {
	if shadow == "" {
		return ""
	}
	if i := strings.Index(shadow, "."+ShadowPrefix); i >= 0 {
		return shadow[i+len("."+ShadowPrefix):]
	}
	if strings.HasPrefix(shadow, ShadowPrefix) {
		return strings.TrimPrefix(shadow, ShadowPrefix)
	}
	return ""
}

func resolveDbPath(ctx context.Context, db *sql.DB, dbName string) (string, error) {
	if db == nil {
		return "", fmt.Errorf("seq: db is nil")
	}
	rows, err := db.QueryContext(ctx, `SELECT name, file FROM pragma_database_list`)
	if err != nil {
		return "", err
	}
	defer rows.Close()
	if dbName == "" {
		dbName = "main"
	}
	for rows.Next() {
		var name, file string
		if err := rows.Scan(&name, &file); err != nil {
			return "", err
		}
		if name == dbName {
			if file == "" {
				return name, nil
			}
			return file, nil
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	return dbName, nil
}

func (t *Table) cachedDbPath(ctx context.Context) string {
	t.dbPathOnce.Do(func() {
		path, err := resolveDbPath(ctx, t.db, t.dbName)
		if err != nil {
			t.dbPathErr = err
			if t.dbName != "" {
				t.dbPath = t.dbName
			} else {
				t.dbPath = "main"
			}
			return
		}
		t.dbPath = path
	})
	return t.dbPath
}

func (t *Table) loadPersistedIndex(ctx context.Context, dataset string) (idxapi.Index, bool, error) {
	var blob []byte
	err := t.db.QueryRowContext(ctx, `SELECT "index" FROM sequence_storage WHERE shadow_table_name = ? AND dataset_id = ?`, t.shadow, dataset).Scan(&blob)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(blob) == 0 {
		return nil, false, nil
	}
	idx, err := LoadIndex(blob)
	if err != nil {
		// A corrupt blob is rebuilt from the shadow table.
		t.log.Warn("seq: discarding persisted index", "shadow", t.shadow, "dataset", dataset, "err", err)
		return nil, false, nil
	}
	return idx, true, nil
}

const (
	lockRetryDelay = 50 * time.Millisecond
	lockStaleAfter = 2 * time.Minute
)

var lockOwnerID = fmt.Sprintf("pid:%d-%s", os.Getpid(), uuid.NewString())

func acquireIndexBuildLock(ctx context.Context, db *sql.DB, shadow, dataset string) (func(), error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		now := time.Now().Unix()
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO sequence_storage_locks(shadow_table_name, dataset_id, owner, locked_at) VALUES(?, ?, ?, ?)`, shadow, dataset, lockOwnerID, now); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		var owner string
		var lockedAt int64
		if err := tx.QueryRowContext(ctx, `SELECT owner, locked_at FROM sequence_storage_locks WHERE shadow_table_name = ? AND dataset_id = ?`, shadow, dataset).Scan(&owner, &lockedAt); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if owner != lockOwnerID && lockedAt <= time.Now().Add(-lockStaleAfter).Unix() {
			res, err := tx.ExecContext(ctx, `UPDATE sequence_storage_locks SET owner = ?, locked_at = ? WHERE shadow_table_name = ? AND dataset_id = ? AND locked_at = ?`, lockOwnerID, now, shadow, dataset, lockedAt)
			if err != nil {
				_ = tx.Rollback()
				return nil, err
			}
			if n, _ := res.RowsAffected(); n > 0 {
				owner = lockOwnerID
			}
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		if owner == lockOwnerID {
			return func() {
				_, _ = db.ExecContext(context.Background(), `DELETE FROM sequence_storage_locks WHERE shadow_table_name = ? AND dataset_id = ? AND owner = ?`, shadow, dataset, lockOwnerID)
			}, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetryDelay):
		}
	}
}

// ensureIndex loads or builds an in-memory index and persists it in sequence_storage.
func (t *Table) ensureIndex(ctx context.Context, dataset string) (idxapi.Index, error) {
	if strings.TrimSpace(dataset) == "" {
		return nil, fmt.Errorf("seq: dataset_id is required for ensureIndex")
	}
	if err := t.ensureShadow(); err != nil {
		return nil, err
	}
	if err := EnsureStorage(t.db); err != nil {
		return nil, err
	}

	key := cacheKey(t.cachedDbPath(ctx), t.tableName, dataset)
	entry := getCacheEntry(key)
	if idx := entry.get(); idx != nil {
		return idx, nil
	}

	if idx, ok, err := t.loadPersistedIndex(ctx, dataset); err != nil {
		return nil, err
	} else if ok {
		entry.set(idx)
		return idx, nil
	}

	for {
		if idx := entry.get(); idx != nil {
			return idx, nil
		}
		if entry.startBuild() {
			break
		}
		if idx := entry.waitForBuild(); idx != nil {
			return idx, nil
		}
	}
	defer entry.finishBuild()

	unlock, err := acquireIndexBuildLock(ctx, t.db, t.shadow, dataset)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Another process may have persisted the index while we waited.
	if idx, ok, err := t.loadPersistedIndex(ctx, dataset); err != nil {
		return nil, err
	} else if ok {
		entry.set(idx)
		return idx, nil
	}

	built, err := BuildIndex(ctx, t.db, t.shadow, dataset, t.indexKind)
	if err != nil {
		return nil, err
	}
	if err := PersistIndex(ctx, t.db, t.shadow, dataset, built); err != nil {
		t.log.Warn("seq: index not persisted", "shadow", t.shadow, "dataset", dataset, "err", err)
	}
	t.log.Debug("seq: index built", "shadow", t.shadow, "dataset", dataset, "values", built.Len())
	entry.set(built)
	return built, nil
}

// BuildIndex loads every (id, value) row of dataset from shadow and builds an
// index of the requested kind ("auto" resolves on the row count).
func BuildIndex(ctx context.Context, db *sql.DB, shadow, dataset, kind string) (idxapi.Index, error) {
	q := fmt.Sprintf("SELECT id, value FROM %s WHERE dataset_id = ? ORDER BY value, rowid", shadow)
	rows, err := db.QueryContext(ctx, q, dataset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	var values []int
	for rows.Next() {
		var id string
		var value int64
		if err := rows.Scan(&id, &value); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		values = append(values, int(value))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	idx := NewIndex(ResolveIndexKind(kind, len(values)))
	if err := idx.Build(ids, values); err != nil {
		return nil, err
	}
	return idx, nil
}

// PersistIndex stores idx for shadow/dataset in sequence_storage under the
// canonical shadow name.
func PersistIndex(ctx context.Context, db *sql.DB, shadow, dataset string, idx idxapi.Index) error {
	data, err := idx.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO sequence_storage(shadow_table_name, dataset_id, "index") VALUES(?, ?, ?)`, CanonicalShadow(shadow), dataset, data)
	return err
}

// sanitizeName converts a qualified name into a safe identifier for triggers.
func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case '.', '-', ' ':
			out = append(out, '_')
		default:
			out = append(out, r)
		}
	}
	return string(out)
}

// quoteLiteral returns SQL string literal with single quotes escaped for safe embedding.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
