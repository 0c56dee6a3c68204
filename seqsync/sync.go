package seqsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// DecodePayload decodes the JSON row carried by a log entry.
func (e *LogEntry) DecodePayload() (*Row, error) {
	row := &Row{}
	if err := json.Unmarshal(e.Payload, row); err != nil {
		return nil, fmt.Errorf("seqsync: invalid payload at scn %d: %w", e.SCN, err)
	}
	return row, nil
}

// LoadState returns the applied SCN for cfg on the downstream db; a missing
// row yields LastSCN 0.
func LoadState(ctx context.Context, db *sql.DB, cfg Config) (SyncState, error) {
	state := SyncState{DatasetID: cfg.DatasetID, ShadowTable: cfg.ShadowTable}
	if _, err := db.ExecContext(ctx, StateTableDDL()); err != nil {
		return state, err
	}
	var updated int64
	err := db.QueryRowContext(ctx, `SELECT last_scn, updated_at FROM `+StateTable+` WHERE dataset_id = ? AND shadow_table = ?`,
		cfg.DatasetID, cfg.ShadowTable).Scan(&state.LastSCN, &updated)
	if err != nil {
		if err == sql.ErrNoRows {
			return state, nil
		}
		return state, err
	}
	state.UpdatedAt = time.Unix(updated, 0)
	return state, nil
}

// Sync replays upstream log entries for cfg into the downstream shadow
// table in batches until the log is drained. Each batch is applied in one
// transaction together with the new SCN.
func Sync(ctx context.Context, upstream, downstream *sql.DB, cfg Config) (SyncState, error) {
	cfg.init()
	if cfg.DatasetID == "" || cfg.ShadowTable == "" {
		return SyncState{}, fmt.Errorf("seqsync: dataset and shadow table are required")
	}
	state, err := LoadState(ctx, downstream, cfg)
	if err != nil {
		return state, err
	}
	if _, err := downstream.ExecContext(ctx, ShadowTableDDL(cfg.LocalShadowTable)); err != nil {
		return state, err
	}
	for {
		entries, err := ReadLog(ctx, upstream, cfg.DatasetID, state.LastSCN, cfg.BatchSize)
		if err != nil {
			return state, err
		}
		if len(entries) == 0 {
			return state, nil
		}
		if state, err = applyBatch(ctx, downstream, cfg, state, entries); err != nil {
			return state, err
		}
		if len(entries) < cfg.BatchSize {
			return state, nil
		}
	}
}

func applyBatch(ctx context.Context, db *sql.DB, cfg Config, state SyncState, entries []LogEntry) (SyncState, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return state, err
	}
	defer func() { _ = tx.Rollback() }()
	next := state
	for i := range entries {
		e := &entries[i]
		next.LastSCN = e.SCN
		if e.ShadowTable != cfg.ShadowTable {
			continue
		}
		if err := applyEntry(ctx, tx, cfg.LocalShadowTable, e); err != nil {
			return state, err
		}
	}
	next.UpdatedAt = time.Now()
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO `+StateTable+`(dataset_id, shadow_table, last_scn, updated_at) VALUES(?, ?, ?, ?)`,
		next.DatasetID, next.ShadowTable, next.LastSCN, next.UpdatedAt.Unix()); err != nil {
		return state, err
	}
	if err := tx.Commit(); err != nil {
		return state, err
	}
	return next, nil
}

func applyEntry(ctx context.Context, tx *sql.Tx, table string, e *LogEntry) error {
	switch e.Op {
	case "insert", "update":
		row, err := e.DecodePayload()
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO `+table+`(dataset_id, id, value) VALUES(?, ?, ?)
ON CONFLICT(dataset_id, id) DO UPDATE SET value = excluded.value`, row.DatasetID, row.ID, row.Value)
		return err
	case "delete":
		_, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE dataset_id = ? AND id = ?`, e.DatasetID, e.DocumentID)
		return err
	default:
		return fmt.Errorf("seqsync: unsupported op %q at scn %d", e.Op, e.SCN)
	}
}
