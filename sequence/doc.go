// Package sequence defines a lightweight sorted-sequence store API and
// SQLite-backed utilities used by this project. It includes:
//   - Sequence model and Store interface
//   - SQLiteStore: durable storage for sequences with binary-search lookups
//   - Schema helpers to create a sequences table
//   - Sequence encoding (BLOB) and ordering helpers
package sequence
