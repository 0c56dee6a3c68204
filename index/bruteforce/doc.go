// Package bruteforce provides a simple integer index that answers lookups by
// scanning every value. It is the reference the sorted index is checked
// against and supports a compact binary format for persistence in the
// sequence_storage table.
package bruteforce
