package linetable

import "fmt"

// Table is the line index for one text. Entry 0 is the permanent
// sentinel; real lines occupy indexes >= 1. See the package documentation
// for the invariants every operation preserves.
type Table[T any] struct {
	recs []Record[T]
}

// New builds a table by scanning the full text.
func New[T any](text []rune) *Table[T] {
	t := &Table[T]{}
	t.Rebuild(text)
	return t
}

// FromRecords builds a table from an explicit record sequence, bypassing
// the scanner. The caller asserts that the records are contiguous,
// ordered, and carry at most one trailing zero-length entry; the sentinel
// is prepended here and must not be included. An empty sequence yields
// the table of the empty text.
func FromRecords[T any](recs []Record[T]) *Table[T] {
	if len(recs) == 0 {
		recs = []Record[T]{{}}
	}
	t := &Table[T]{recs: make([]Record[T], 0, len(recs)+1)}
	t.recs = append(t.recs, Record[T]{})
	t.recs = append(t.recs, recs...)
	return t
}

// Rebuild replaces every entry with a fresh scan of text, keeping only
// the sentinel. All payloads are dropped.
func (t *Table[T]) Rebuild(text []rune) {
	scanned := scanLines[T](text)
	recs := make([]Record[T], 0, len(scanned)+1)
	recs = append(recs, Record[T]{})
	t.recs = append(recs, scanned...)
}

// Len returns the number of entries, sentinel included.
func (t *Table[T]) Len() int {
	return len(t.recs)
}

// LineCount returns the number of real lines.
func (t *Table[T]) LineCount() int {
	return len(t.recs) - 1
}

// End returns the total character count of the text the table describes.
func (t *Table[T]) End() int {
	return t.recs[len(t.recs)-1].End()
}

// lastIndex returns the index of the last entry. The table always holds
// at least one real record, so this is >= 1.
func (t *Table[T]) lastIndex() int {
	return len(t.recs) - 1
}

// Get returns the record at the given index, or false if the index is
// outside the table. Index 0 is the sentinel.
func (t *Table[T]) Get(i int) (Record[T], bool) {
	if i < 0 || i >= len(t.recs) {
		return Record[T]{}, false
	}
	return t.recs[i], true
}

// SetInfo attaches a payload to the record at the given index. The
// sentinel never carries information; writes to it (or out-of-range
// indexes) are rejected.
func (t *Table[T]) SetInfo(i int, info T) bool {
	if i < 1 || i >= len(t.recs) {
		return false
	}
	t.recs[i].Info = &info
	return true
}

// ClearInfo removes the payload from the record at the given index.
func (t *Table[T]) ClearInfo(i int) bool {
	if i < 1 || i >= len(t.recs) {
		return false
	}
	t.recs[i].Info = nil
	return true
}

// LineContaining returns the index of the real line whose range contains
// the given rune offset, or false if the offset lies outside the text.
func (t *Table[T]) LineContaining(off int) (int, bool) {
	if off < 0 || len(t.recs) < 2 {
		return 0, false
	}
	// Binary search over [1, lastIndex]: keep the highest index whose
	// start is <= off, then validate containment.
	lo, hi := 1, t.lastIndex()
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if off < t.recs[mid].Start {
			hi = mid - 1
		} else {
			lo = mid
		}
	}
	if t.recs[lo].Contains(off) {
		return lo, true
	}
	return 0, false
}

// LineOf is LineContaining extended to the insertion point at the very
// end of the text: the offset one past the last character resolves to
// the last line even though no range contains it.
func (t *Table[T]) LineOf(off int) (int, bool) {
	if off == t.End() {
		return t.lastIndex(), true
	}
	return t.LineContaining(off)
}

// LinesContaining returns the smallest contiguous span of real lines
// overlapping the half-open character range r.
//
// A negative start clamps to 0. A negative length is degenerate: the
// result is the empty span positioned at the line containing the clamped
// start (or at the last line when the start is at or past the end of the
// text), signalling "remove nothing, insert before this line". A
// zero-length range resolves both endpoints with LineOf. When the range
// ends on the line just before a zero-length trailing record, the span is
// extended to include that record: an edit landing on the final line
// break touches the empty line after it. A start that cannot be resolved
// yields the empty span at the clamp boundary.
func (t *Table[T]) LinesContaining(r Range) Span {
	start := r.Start
	if start < 0 {
		start = 0
	}

	if r.Length < 0 {
		if idx, ok := t.LineOf(start); ok {
			return emptyAt(idx)
		}
		return emptyAt(t.lastIndex())
	}

	startLine, ok := t.LineOf(start)
	if !ok {
		if r.Start < 0 {
			return emptyAt(0)
		}
		return emptyAt(t.lastIndex())
	}

	if r.Length == 0 {
		return Span{Start: startLine, End: startLine}
	}

	endLine, ok := t.LineContaining(start + r.Length - 1)
	if !ok {
		endLine = t.lastIndex()
	}
	if last := t.lastIndex(); endLine == last-1 && t.recs[last].Length == 0 {
		endLine = last
	}
	return Span{Start: startLine, End: endLine}
}

// Records returns a copy of every entry, sentinel included. Intended for
// inspection and tests; mutating the copy does not affect the table.
func (t *Table[T]) Records() []Record[T] {
	out := make([]Record[T], len(t.recs))
	copy(out, t.recs)
	return out
}

// Validate checks the table invariants and returns the first violation
// found, or nil. The expected total text length is taken from the table
// itself; use ValidateFor to check against a known text length.
func (t *Table[T]) Validate() error {
	return t.ValidateFor(t.End())
}

// ValidateFor checks the table invariants against the length of the text
// the table is supposed to describe.
func (t *Table[T]) ValidateFor(textLen int) error {
	if len(t.recs) < 2 {
		return fmt.Errorf("table has %d entries, need sentinel plus at least one line", len(t.recs))
	}
	s := t.recs[0]
	if s.Start != 0 || s.Length != 0 || s.Info != nil {
		return fmt.Errorf("sentinel corrupted: %v", s)
	}
	if t.recs[1].Start != 0 {
		return fmt.Errorf("first line starts at %d, want 0", t.recs[1].Start)
	}
	total := 0
	for i := 1; i < len(t.recs); i++ {
		r := t.recs[i]
		if r.Length < 0 {
			return fmt.Errorf("line %d has negative length %d", i, r.Length)
		}
		if r.Length == 0 && i != len(t.recs)-1 {
			return fmt.Errorf("line %d has zero length but is not last", i)
		}
		if i+1 < len(t.recs) && t.recs[i+1].Start != r.End() {
			return fmt.Errorf("line %d ends at %d but line %d starts at %d",
				i, r.End(), i+1, t.recs[i+1].Start)
		}
		total += r.Length
	}
	if total != textLen {
		return fmt.Errorf("line lengths sum to %d, text has %d characters", total, textLen)
	}
	return nil
}
