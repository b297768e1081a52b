package buffer

import "github.com/dshills/linetab/internal/engine/linetable"

// Snapshot provides a read-only view of a buffer at a specific point in
// time. It will not change when the original buffer is modified. Content
// reads are safe from any goroutine; line queries build a private table
// on first use and confine the snapshot to one goroutine.
type Snapshot struct {
	content    []rune
	table      *linetable.Table[struct{}]
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return string(s.content)
}

// Len returns the total character count of the snapshot.
func (s *Snapshot) Len() int {
	return len(s.content)
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return len(s.content) == 0
}

// RevisionID returns the revision ID of this snapshot.
func (s *Snapshot) RevisionID() RevisionID {
	return s.revisionID
}

// LineEnding returns the snapshot's write-out line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// lines returns the lazily built line table for the snapshot.
// Snapshots are confined to one goroutine after first query.
func (s *Snapshot) lines() *linetable.Table[struct{}] {
	if s.table == nil {
		s.table = linetable.New[struct{}](s.content)
	}
	return s.table
}

// LineCount returns the number of real lines.
func (s *Snapshot) LineCount() int {
	return s.lines().LineCount()
}

// LineText returns the text of the line at the given table index,
// terminator excluded.
func (s *Snapshot) LineText(i int) string {
	r, ok := s.lines().Get(i)
	if !ok || i == 0 {
		return ""
	}
	end := r.End()
	if end > r.Start && s.content[end-1] == '\n' {
		end--
	}
	return string(s.content[r.Start:end])
}

// LineOf returns the line index for a cursor offset.
func (s *Snapshot) LineOf(off Offset) (int, bool) {
	return s.lines().LineOf(off)
}
