// Package buffer provides the text buffer that owns a line table. It
// holds the document as a flat rune sequence, applies edits to it, and
// repairs its linetable.Table in place after every mutation, so that
// offset/line queries stay correct without rescanning the document.
//
// The buffer package provides:
//
//   - Insert/Delete/Replace primitives plus ApplyEdit for arbitrary
//     single edits
//   - An incremental line table, repaired once per atomic edit
//   - Edit observers, notified exactly once per mutation with post-edit
//     coordinates
//   - Line ending detection and normalization (content is stored with LF
//     terminators; the ending style is applied on write-out)
//   - Revision tracking and read-only snapshots
//
// Offsets are rune offsets, not byte offsets: the line table maps
// character positions, and collaborators address columns in characters.
//
// The payload type parameter T is the per-line annotation the owning
// session attaches to table records; the buffer never inspects it.
//
// All Buffer methods are safe for concurrent use; reads take a read
// lock, mutations an exclusive lock. The embedded table is only touched
// while the write lock is held.
package buffer
