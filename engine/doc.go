// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module: opening connections, applying connection pragmas,
// and registering the seq_* SQL scalar functions that binary search encoded
// integer sequences. It keeps a thin surface so other packages can share the
// same driver instance.
package engine
