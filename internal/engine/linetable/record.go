package linetable

import "fmt"

// Record describes one line of text: a half-open rune range plus an
// optional cached payload. The range includes the line's terminator; a
// line's content and its terminator are one unit.
type Record[T any] struct {
	Start  int // Rune offset of the first character of the line
	Length int // Number of runes, terminator included
	Info   *T  // Optional payload; nil means absent
}

// End returns the offset one past the last character of the line.
func (r Record[T]) End() int {
	return r.Start + r.Length
}

// Contains returns true if the given rune offset falls inside the line.
// A zero-length record contains nothing.
func (r Record[T]) Contains(off int) bool {
	return off >= r.Start && off < r.Start+r.Length
}

// String returns a human-readable representation of the record.
func (r Record[T]) String() string {
	if r.Info == nil {
		return fmt.Sprintf("(%d,%d)", r.Start, r.Length)
	}
	return fmt.Sprintf("(%d,%d)*", r.Start, r.Length)
}

// Range is a half-open character range expressed as start and length.
// Edits report the span they affected as a Range in post-edit coordinates.
type Range struct {
	Start  int
	Length int
}

// End returns the exclusive end offset of the range.
func (r Range) End() int {
	return r.Start + r.Length
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d+%d)", r.Start, r.Length)
}

// Span is an inclusive interval of line indexes. A Span with End < Start
// is empty but positioned: it names the line before which an insertion
// belongs while covering no lines itself.
type Span struct {
	Start int
	End   int
}

// IsEmpty returns true if the span covers no lines.
func (s Span) IsEmpty() bool {
	return s.End < s.Start
}

// Count returns the number of lines the span covers.
func (s Span) Count() int {
	if s.IsEmpty() {
		return 0
	}
	return s.End - s.Start + 1
}

// Contains returns true if the line index lies within the span.
func (s Span) Contains(line int) bool {
	return line >= s.Start && line <= s.End
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.IsEmpty() {
		return fmt.Sprintf("[@%d]", s.Start)
	}
	return fmt.Sprintf("[%d..%d]", s.Start, s.End)
}

// emptyAt returns the empty span positioned before the given line.
func emptyAt(line int) Span {
	return Span{Start: line, End: line - 1}
}
