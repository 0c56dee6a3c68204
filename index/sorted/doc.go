// Package sorted provides an integer index that answers lookups with binary
// search over its ascending values.
package sorted
