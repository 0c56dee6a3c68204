package sequtil

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viant/sqlite-seq/seq"
)

// ShadowTableName derives the shadow table name for a given seq virtual
// table. It mirrors the naming convention used by the seq module, which
// prefixes the table name with _seq_.
//
// For example:
//
//	ShadowTableName("nums") == "_seq_nums"
func ShadowTableName(virtualTable string) string {
	return seq.ShadowPrefix + virtualTable
}

// UpsertShadowValue inserts or updates one (id, value) row of dataset in a
// seq shadow table. Table names are interpolated into SQL; callers should
// ensure that shadowTable is trusted.
func UpsertShadowValue(ctx context.Context, db execer, shadowTable, dataset, id string, value int) error {
	if db == nil {
		return fmt.Errorf("sequtil: db is nil")
	}
	stmt := fmt.Sprintf(`
INSERT INTO %s(dataset_id, id, value)
VALUES (?, ?, ?)
ON CONFLICT(dataset_id, id) DO UPDATE SET
  value = excluded.value`, shadowTable)
	_, err := db.ExecContext(ctx, stmt, dataset, id, value)
	return err
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
