package cmd

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/viant/sqlite-seq/engine"
	"github.com/viant/sqlite-seq/seq"
	"github.com/viant/sqlite-seq/sequtil"
)

// openIndex opens cfg.DSN, creates the seq virtual table if missing and
// returns a dataset-scoped index over it.
func openIndex(cfg *Config, log *slog.Logger) (*sql.DB, *sequtil.Index, error) {
	db, err := engine.Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	// Single connection ensures vtab registration for CREATE VTAB.
	db.SetMaxOpenConns(1)
	if err := seq.Register(db, seq.WithLogger(log)); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := engine.Configure(db, cfg.busyTimeout()); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	ddl := fmt.Sprintf("CREATE VIRTUAL TABLE IF NOT EXISTS %s USING seq(doc_id, index=%s)", cfg.Table, cfg.Index)
	if _, err := db.Exec(ddl); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	ix, err := sequtil.NewIndex(db, cfg.Table, cfg.Dataset)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	// The virtual table reads its shadow through a second connection.
	db.SetMaxOpenConns(2)
	log.Debug("opened index", "dsn", cfg.DSN, "table", cfg.Table, "dataset", cfg.Dataset, "index", cfg.Index)
	return db, ix, nil
}
