// Package seqsync provides SCN-based change capture for sequence shadow
// tables. An upstream database records every shadow row change in
// seq_shadow_log through triggers, and Sync replays those entries into a
// downstream SQLite shadow table, tracking progress in seq_sync_state.
package seqsync
