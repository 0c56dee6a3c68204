// Package index defines a minimal abstraction for integer indexes that can be
// built from (id, value) pairs, queried for an exact value, and serialized
// for persistence. Implementations in this module include a linear-scan
// baseline (bruteforce) and a binary-search index (sorted).
package index
