// Package seq implements a SQLite virtual table for exact integer lookups
// with MATCH semantics. Each virtual table has a per-table shadow table that
// stores dataset-scoped (id, value) rows. An index blob per dataset is
// persisted in the shared sequence_storage table, and an in-memory cache
// accelerates queries.
//
// Features:
//   - WHERE dataset_id = ? AND doc_id MATCH ? with an integer target
//   - Hidden position column holding the rank of the value in its dataset
//   - Auto-created shadow triggers that invalidate persisted and cached indexes
//   - Pluggable index (linear-scan baseline, binary-search sorted index)
package seq
