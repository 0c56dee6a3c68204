// Package bsearch implements binary search over ascending integer slices.
//
// Search is the primary routine: it locates any occurrence of a target and
// reports absence with the NotFound sentinel. The package also carries the
// usual variations built on the same closed-range loop: leftmost/rightmost
// occurrence, insertion point, rotated slices, peak finding and searching an
// answer space (MinEatingSpeed, ShipCapacity).
//
// None of the routines verify that their input is sorted. On unsorted input
// the result is unspecified, but every routine terminates.
package bsearch
