package buffer

import (
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/linetab/internal/engine/linetable"
)

// Errors returned by buffer operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
)

// LineEnding specifies the line ending style used when writing out.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer holds one document and its line table. Content is stored as a
// rune slice with LF terminators; the configured LineEnding is applied
// only when the content is written out.
//
// T is the per-line payload type attached to line table records.
type Buffer[T any] struct {
	mu         sync.RWMutex
	content    []rune
	table      *linetable.Table[T]
	sessionID  string
	revisionID RevisionID
	lineEnding LineEnding
	tabWidth   int
	observers  []Observer
}

// New creates a new empty buffer.
func New[T any](opts ...Option[T]) *Buffer[T] {
	b := &Buffer[T]{
		table:      linetable.New[T](nil),
		sessionID:  uuid.NewString(),
		revisionID: NewRevisionID(),
		lineEnding: LineEndingLF,
		tabWidth:   4,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// NewFromString creates a buffer with initial content. The write-out
// line ending is detected from the text unless an option overrides it.
func NewFromString[T any](s string, opts ...Option[T]) *Buffer[T] {
	b := New[T](opts...)
	if len(opts) == 0 {
		b.lineEnding = DetectLineEnding(s)
	}
	b.content = []rune(normalize(s))
	b.table = linetable.New[T](b.content)
	return b
}

// NewFromReader creates a buffer from an io.Reader.
func NewFromReader[T any](r io.Reader, opts ...Option[T]) (*Buffer[T], error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewFromString(string(data), opts...), nil
}

// normalize converts CRLF and CR line endings to LF.
func normalize(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// Text returns the full buffer content as a string (LF terminated).
func (b *Buffer[T]) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return string(b.content)
}

// WriteTo writes the content with the configured line ending style.
func (b *Buffer[T]) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	text := string(b.content)
	le := b.lineEnding
	b.mu.RUnlock()

	if le != LineEndingLF {
		text = strings.ReplaceAll(text, "\n", le.Sequence())
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// TextRange returns the text in [start, end). Out-of-range bounds clamp.
func (b *Buffer[T]) TextRange(start, end Offset) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if start < 0 {
		start = 0
	}
	if end > len(b.content) {
		end = len(b.content)
	}
	if start >= end {
		return ""
	}
	return string(b.content[start:end])
}

// Len returns the total character count of the buffer.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content)
}

// IsEmpty returns true if the buffer has no content.
func (b *Buffer[T]) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.content) == 0
}

// Line Table Queries

// LineCount returns the number of real lines in the table.
func (b *Buffer[T]) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineCount()
}

// Line returns the table record at the given index.
func (b *Buffer[T]) Line(i int) (linetable.Record[T], bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.Get(i)
}

// LineText returns the text of the line at the given table index,
// terminator excluded. Absent lines yield the empty string.
func (b *Buffer[T]) LineText(i int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.table.Get(i)
	if !ok || i == 0 {
		return ""
	}
	end := r.End()
	if end > r.Start && b.content[end-1] == '\n' {
		end--
	}
	return string(b.content[r.Start:end])
}

// LineContaining returns the index of the line containing the offset.
func (b *Buffer[T]) LineContaining(off Offset) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineContaining(off)
}

// LineOf returns the line index for a cursor offset, accepting the
// end-of-document position.
func (b *Buffer[T]) LineOf(off Offset) (int, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LineOf(off)
}

// LinesContaining returns the span of lines overlapping a character range.
func (b *Buffer[T]) LinesContaining(r linetable.Range) linetable.Span {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.LinesContaining(r)
}

// OffsetToPoint converts a cursor offset to a line/column position.
func (b *Buffer[T]) OffsetToPoint(off Offset) (Point, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	idx, ok := b.table.LineOf(off)
	if !ok {
		return Point{}, false
	}
	r, _ := b.table.Get(idx)
	return Point{Line: idx, Column: off - r.Start}, true
}

// PointToOffset converts a line/column position to a cursor offset. The
// column clamps to the end of the line.
func (b *Buffer[T]) PointToOffset(p Point) (Offset, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.table.Get(p.Line)
	if !ok || p.Line == 0 {
		return 0, false
	}
	col := p.Column
	if col < 0 {
		col = 0
	}
	if col > r.Length {
		col = r.Length
	}
	return r.Start + col, true
}

// Payload access for analysis collaborators.

// LineInfo returns the payload attached to a line, if any.
func (b *Buffer[T]) LineInfo(i int) (*T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	r, ok := b.table.Get(i)
	if !ok {
		return nil, false
	}
	return r.Info, r.Info != nil
}

// SetLineInfo attaches a payload to a line record.
func (b *Buffer[T]) SetLineInfo(i int, info T) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table.SetInfo(i, info)
}

// Annotate calls fn under the buffer lock with the table and the current
// content, letting a collaborator fill payloads in bulk without racing
// against edits.
func (b *Buffer[T]) Annotate(fn func(t *linetable.Table[T], text []rune)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.table, b.content)
}

// Write Operations

// Insert inserts text at the given offset.
// Returns the end position of the inserted text.
func (b *Buffer[T]) Insert(offset Offset, text string) (Offset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > len(b.content) {
		return 0, ErrOffsetOutOfRange
	}
	res := b.replaceLocked(offset, offset, text)
	return res.NewRange.End, nil
}

// Delete removes text in the given range.
func (b *Buffer[T]) Delete(start, end Offset) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > len(b.content) {
		return ErrRangeInvalid
	}
	b.replaceLocked(start, end, "")
	return nil
}

// Replace replaces text in the given range with new text.
// Returns the end position of the replacement text.
func (b *Buffer[T]) Replace(start, end Offset, text string) (Offset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if start < 0 || start > end || end > len(b.content) {
		return 0, ErrRangeInvalid
	}
	res := b.replaceLocked(start, end, text)
	return res.NewRange.End, nil
}

// ApplyEdit applies a single edit and reports the result.
func (b *Buffer[T]) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End ||
		edit.Range.End > len(b.content) {
		return EditResult{}, ErrRangeInvalid
	}
	return b.replaceLocked(edit.Range.Start, edit.Range.End, edit.NewText), nil
}

// SetText replaces the entire content. The table is repaired through the
// same edit path, exercising the whole-document rebuild equivalence.
func (b *Buffer[T]) SetText(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaceLocked(0, len(b.content), text)
}

// replaceLocked performs the edit, repairs the table, and notifies
// observers. Caller holds the write lock.
func (b *Buffer[T]) replaceLocked(start, end Offset, text string) EditResult {
	ins := []rune(normalize(text))
	oldText := string(b.content[start:end])

	next := make([]rune, 0, len(b.content)-(end-start)+len(ins))
	next = append(next, b.content[:start]...)
	next = append(next, ins...)
	next = append(next, b.content[end:]...)
	b.content = next

	delta := len(ins) - (end - start)
	edited := linetable.Range{Start: start, Length: len(ins)}
	b.table.ApplyEdit(b.content, edited, delta)
	b.revisionID = NewRevisionID()

	for _, o := range b.observers {
		o.TextEdited(b.content, edited, delta)
	}

	return EditResult{
		OldRange:   Range{Start: start, End: end},
		NewRange:   Range{Start: start, End: start + len(ins)},
		OldText:    oldText,
		Delta:      delta,
		RevisionID: b.revisionID,
	}
}

// Observe registers an observer for subsequent edits.
func (b *Buffer[T]) Observe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Buffer State

// SessionID identifies the editing session that owns this buffer.
func (b *Buffer[T]) SessionID() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.sessionID
}

// RevisionID returns the current revision ID.
func (b *Buffer[T]) RevisionID() RevisionID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revisionID
}

// LineEnding returns the buffer's write-out line ending style.
func (b *Buffer[T]) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the buffer's write-out line ending style.
func (b *Buffer[T]) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// TabWidth returns the buffer's tab width.
func (b *Buffer[T]) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// Validate checks the line table invariants against the content.
func (b *Buffer[T]) Validate() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.table.ValidateFor(len(b.content))
}

// Snapshot returns a read-only snapshot of the current buffer state.
// Content reads are safe from any goroutine; line queries confine the
// snapshot to one goroutine (see Snapshot).
func (b *Buffer[T]) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	content := make([]rune, len(b.content))
	copy(content, b.content)

	return &Snapshot{
		content:    content,
		revisionID: b.revisionID,
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
	}
}
