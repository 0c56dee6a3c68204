package sequence

import (
	"database/sql"
)

const sequencesSchema = `
CREATE TABLE IF NOT EXISTS sequences (
    id TEXT PRIMARY KEY,
    label TEXT,
    payload BLOB
);
`

// EnsureSchema creates the base sequences table in the provided database if
// it does not already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(sequencesSchema)
	return err
}
