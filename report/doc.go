// Package report renders and serializes snapshots of the canonical type
// table.
//
// Render draws a snapshot as a terminal table. Encode and Decode move a
// snapshot through a compact CBOR form with integer keys, so dumps taken
// from different processes can be compared byte for byte.
package report
