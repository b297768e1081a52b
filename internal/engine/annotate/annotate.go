package annotate

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dshills/linetab/internal/engine/linetable"
)

// Note is the payload cached on line table records: display metrics for
// the line's content (terminator excluded) plus an optional class.
type Note struct {
	// Width is the monospace display width of the line in cells.
	Width int

	// Graphemes is the number of grapheme clusters in the line.
	Graphemes int

	// Class is an optional label assigned by a script annotator.
	Class string
}

// Annotator computes the payload for one line. line is the table index
// of the record, text its content without the terminator.
type Annotator interface {
	AnnotateLine(text string, line int) (Note, error)
}

// Refresh computes payloads for every record that has none, using the
// given annotator, and reports how many lines were annotated. Records
// that kept their payload across an edit are not recomputed. The text
// must be the exact text the table describes.
func Refresh(tab *linetable.Table[Note], text []rune, a Annotator) (int, error) {
	refreshed := 0
	for i := 1; i < tab.Len(); i++ {
		r, _ := tab.Get(i)
		if r.Info != nil {
			continue
		}
		n, err := a.AnnotateLine(lineContent(text, r), i)
		if err != nil {
			return refreshed, err
		}
		tab.SetInfo(i, n)
		refreshed++
	}
	return refreshed, nil
}

// lineContent extracts a record's text from the document, terminator
// excluded.
func lineContent(text []rune, r linetable.Record[Note]) string {
	end := r.End()
	if end > r.Start && text[end-1] == '\n' {
		end--
	}
	return string(text[r.Start:end])
}

// Metrics annotates lines with display width and grapheme count.
type Metrics struct{}

// AnnotateLine implements Annotator.
func (Metrics) AnnotateLine(text string, _ int) (Note, error) {
	return Note{
		Width:     uniseg.StringWidth(text),
		Graphemes: uniseg.GraphemeClusterCount(text),
	}, nil
}

// Classify returns a coarse builtin class for a line, used when no
// script annotator is configured.
func Classify(text string) string {
	trimmed := strings.TrimSpace(text)
	switch {
	case trimmed == "":
		return "blank"
	case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//"):
		return "comment"
	default:
		return "text"
	}
}

// Basic is the default annotator: metrics plus the builtin classifier.
type Basic struct{}

// AnnotateLine implements Annotator.
func (Basic) AnnotateLine(text string, line int) (Note, error) {
	n, _ := Metrics{}.AnnotateLine(text, line)
	n.Class = Classify(text)
	return n, nil
}
