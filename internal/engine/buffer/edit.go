package buffer

import (
	"fmt"

	"github.com/dshills/linetab/internal/engine/linetable"
)

// Edit represents a text edit operation.
// It specifies a range to replace and the new text.
type Edit struct {
	Range   Range  // The range to replace
	NewText string // The replacement text
}

// NewEdit creates a new Edit.
func NewEdit(r Range, newText string) Edit {
	return Edit{Range: r, NewText: newText}
}

// NewInsert creates an Edit that inserts text at a position.
func NewInsert(offset Offset, text string) Edit {
	return Edit{
		Range:   Range{Start: offset, End: offset},
		NewText: text,
	}
}

// NewDelete creates an Edit that deletes a range of text.
func NewDelete(start, end Offset) Edit {
	return Edit{
		Range:   Range{Start: start, End: end},
		NewText: "",
	}
}

// String returns a human-readable representation of the edit.
func (e Edit) String() string {
	if e.Range.IsEmpty() {
		return fmt.Sprintf("Insert(%d, %q)", e.Range.Start, e.NewText)
	}
	if e.NewText == "" {
		return fmt.Sprintf("Delete%s", e.Range.String())
	}
	return fmt.Sprintf("Replace(%s, %q)", e.Range.String(), e.NewText)
}

// EditResult describes an applied edit in post-edit coordinates.
type EditResult struct {
	// OldRange is the range that was replaced, in pre-edit coordinates.
	OldRange Range

	// NewRange is the range the replacement occupies, in post-edit
	// coordinates.
	NewRange Range

	// OldText is the text that was removed.
	OldText string

	// Delta is the net change in character count.
	Delta int

	// RevisionID is the revision after the edit.
	RevisionID RevisionID
}

// EditedRange returns the affected span as a line table range: the
// post-edit location and length of the replacement text.
func (r EditResult) EditedRange() linetable.Range {
	return linetable.Range{Start: r.NewRange.Start, Length: r.NewRange.Len()}
}

// Observer is notified after every atomic buffer mutation, exactly once
// per edit, with the complete post-edit text and the edit descriptor the
// line table consumes. Observers run synchronously under the buffer's
// write lock and must not call back into the buffer.
type Observer interface {
	TextEdited(text []rune, edit linetable.Range, delta int)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(text []rune, edit linetable.Range, delta int)

// TextEdited implements Observer.
func (f ObserverFunc) TextEdited(text []rune, edit linetable.Range, delta int) {
	f(text, edit, delta)
}
