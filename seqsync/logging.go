package seqsync

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultLogTable is the upstream change-log table that captures row-level SCN events.
	DefaultLogTable = "seq_shadow_log"

	// DefaultScnTable stores the next SCN per dataset on the upstream database.
	DefaultScnTable = "seq_dataset_scn"

	// StateTable tracks applied SCNs on downstream replicas.
	StateTable = "seq_sync_state"
)

// ShadowTableDDL returns the DDL of an upstream shadow table with SCN support.
// It is column-compatible with the seq virtual table shadow.
func ShadowTableDDL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + table + ` (
    dataset_id TEXT NOT NULL,
    id         TEXT NOT NULL,
    value      INTEGER NOT NULL,
    scn        INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY(dataset_id, id)
);`
}

// LogTableDDL returns the DDL for seq_shadow_log.
func LogTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + DefaultLogTable + ` (
    dataset_id   TEXT NOT NULL,
    shadow_table TEXT NOT NULL,
    scn          INTEGER NOT NULL,
    op           TEXT NOT NULL,
    document_id  TEXT NOT NULL,
    payload      BLOB NOT NULL,
    created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    PRIMARY KEY(dataset_id, shadow_table, scn)
);`
}

// ScnTableDDL returns the DDL for tracking the next SCN per dataset.
func ScnTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + DefaultScnTable + ` (
    dataset_id TEXT PRIMARY KEY,
    next_scn   INTEGER NOT NULL
);`
}

// StateTableDDL returns the DDL of the downstream progress table.
func StateTableDDL() string {
	return `CREATE TABLE IF NOT EXISTS ` + StateTable + ` (
    dataset_id   TEXT NOT NULL,
    shadow_table TEXT NOT NULL,
    last_scn     INTEGER NOT NULL,
    updated_at   INTEGER NOT NULL,
    PRIMARY KEY(dataset_id, shadow_table)
);`
}

// dialect holds the syntax differences between trigger flavours.
type dialect struct {
	createTrigger string
	forEachRow    string
	jsonObject    string
	advance       string // format args: scn table, alias
	scnExpr       string // format args: scn table, alias
}

var (
	sqliteDialect = dialect{
		createTrigger: "CREATE TRIGGER IF NOT EXISTS",
		jsonObject:    "json_object",
		advance: `INSERT INTO %[1]s(dataset_id, next_scn)
    VALUES (%[2]s.dataset_id, 1)
    ON CONFLICT(dataset_id) DO UPDATE SET next_scn = next_scn + 1;`,
		scnExpr: `(SELECT next_scn FROM %[1]s WHERE dataset_id = %[2]s.dataset_id)`,
	}
	mysqlDialect = dialect{
		createTrigger: "CREATE TRIGGER",
		forEachRow:    "\nFOR EACH ROW",
		jsonObject:    "JSON_OBJECT",
		advance: `INSERT INTO %[1]s(dataset_id, next_scn)
    VALUES (%[2]s.dataset_id, 1)
    ON DUPLICATE KEY UPDATE next_scn = next_scn + 1;
    SELECT next_scn INTO @seqsync_scn FROM %[1]s WHERE dataset_id = %[2]s.dataset_id;`,
		scnExpr: `@seqsync_scn`,
	}
)

// SQLiteShadowLogTriggers returns the trigger DDL statements that capture
// inserts, updates and deletes against a shadow table into the log table
// using SQLite syntax. The payload is a JSON object of the row.
func SQLiteShadowLogTriggers(shadowTable, scnTable, logTable string) []string {
	return shadowLogTriggers(sqliteDialect, shadowTable, scnTable, logTable)
}

// MySQLShadowLogTriggers returns the MySQL flavour of SQLiteShadowLogTriggers.
// Callers wrap the statements with an appropriate DELIMITER when executing them.
func MySQLShadowLogTriggers(shadowTable, scnTable, logTable string) []string {
	return shadowLogTriggers(mysqlDialect, shadowTable, scnTable, logTable)
}

func shadowLogTriggers(d dialect, shadowTable, scnTable, logTable string) []string {
	if scnTable == "" {
		scnTable = DefaultScnTable
	}
	if logTable == "" {
		logTable = DefaultLogTable
	}
	base := sanitizeIdentifier(shadowTable)
	events := []struct {
		suffix, event, op, alias string
	}{
		{"ai", "INSERT", "insert", "NEW"},
		{"au", "UPDATE", "update", "NEW"},
		{"ad", "DELETE", "delete", "OLD"},
	}
	out := make([]string, 0, len(events))
	for _, e := range events {
		payload := fmt.Sprintf(`%[1]s('dataset_id', %[2]s.dataset_id, 'id', %[2]s.id, 'value', %[2]s.value)`, d.jsonObject, e.alias)
		out = append(out, fmt.Sprintf(`%s %s_%s AFTER %s ON %s%s
BEGIN
    %s
    INSERT INTO %s(dataset_id, shadow_table, scn, op, document_id, payload)
    VALUES (%s.dataset_id, '%s', %s, '%s', %s.id, %s);
END;`,
			d.createTrigger, base, e.suffix, e.event, shadowTable, d.forEachRow,
			fmt.Sprintf(d.advance, scnTable, e.alias),
			logTable, e.alias, shadowTable, fmt.Sprintf(d.scnExpr, scnTable, e.alias), e.op, e.alias, payload))
	}
	return out
}

// Install creates the shadow, log and SCN tables on db and attaches the
// SQLite change-log triggers to shadow.
func Install(ctx context.Context, db *sql.DB, shadow string) error {
	if db == nil {
		return fmt.Errorf("seqsync: db is nil")
	}
	stmts := append([]string{ShadowTableDDL(shadow), LogTableDDL(), ScnTableDDL()},
		SQLiteShadowLogTriggers(shadow, "", "")...)
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seqsync: install %s: %w", shadow, err)
		}
	}
	return nil
}

// ReadLog returns up to limit entries of dataset with SCN greater than
// afterSCN, in SCN order.
func ReadLog(ctx context.Context, db *sql.DB, dataset string, afterSCN int64, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = defaultBatchSize
	}
	rows, err := db.QueryContext(ctx, `SELECT dataset_id, shadow_table, scn, op, document_id, payload, created_at
FROM `+DefaultLogTable+` WHERE dataset_id = ? AND scn > ? ORDER BY scn LIMIT ?`, dataset, afterSCN, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []LogEntry
	for rows.Next() {
		var e LogEntry
		var created interface{}
		if err := rows.Scan(&e.DatasetID, &e.ShadowTable, &e.SCN, &e.Op, &e.DocumentID, &e.Payload, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = asTime(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

func asTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case string:
		if ts, err := time.Parse(time.DateTime, val); err == nil {
			return ts
		}
	case []byte:
		return asTime(string(val))
	}
	return time.Time{}
}

func sanitizeIdentifier(name string) string {
	if name == "" {
		return ""
	}
	replacer := strings.NewReplacer(".", "_", "-", "_")
	return replacer.Replace(name)
}
