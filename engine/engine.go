package engine

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// DriverName is the database/sql driver name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Open opens a SQLite database using the modernc.org/sqlite driver.
//
// For file-based databases, pass a path like "./db.sqlite". For in-memory
// databases, pass ":memory:".
func Open(dsn string) (*sql.DB, error) { return sql.Open(DriverName, dsn) }

// Configure enables WAL journaling and sets the busy timeout on db. The seq
// virtual table reads its shadow table through a second connection while a
// statement is running, so file databases should be configured this way.
func Configure(db *sql.DB, busyTimeout time.Duration) error {
	if db == nil {
		return fmt.Errorf("engine: db is nil")
	}
	if busyTimeout < 0 {
		busyTimeout = 0
	}
	stmt := fmt.Sprintf(`PRAGMA journal_mode=WAL; PRAGMA busy_timeout=%d;`, busyTimeout.Milliseconds())
	_, err := db.Exec(stmt)
	return err
}
