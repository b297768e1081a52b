package linetable

// ApplyEdit repairs the table after an edit to the text it describes.
// text is the complete post-edit text, edit the affected character range
// in post-edit coordinates, and delta the net change in character count
// (positive for growth). Cost is proportional to the number of touched
// lines plus the trailing records whose offsets shift, never the whole
// document — except on a malformed descriptor, which silently degrades
// to a full rescan.
//
// Payloads of the records the edit replaces are cleared; records outside
// the spliced region keep theirs.
func (t *Table[T]) ApplyEdit(text []rune, edit Range, delta int) {
	start, length := edit.Start, edit.Length

	// A descriptor that cannot describe a real edit of the recorded text
	// gets the always-safe full rescan instead. The last check catches a
	// delta inconsistent with the recorded table, including a descriptor
	// reapplied to an already-updated table.
	if start < 0 || length < 0 || length-delta < 0 ||
		start+length > len(text) || start+length-delta > t.End() ||
		t.End() != len(text)-delta {
		t.Rebuild(text)
		return
	}

	// Pull the following line into the window: a terminator created or
	// removed exactly at the range's end moves that line's boundary.
	if start+length < len(text) {
		length++
	}

	// The lines the edit touched, located in pre-edit coordinates (same
	// place, length shrunk by delta).
	old := t.LinesContaining(Range{Start: start, Length: length - delta})
	if old.IsEmpty() || old.Start < 1 {
		t.Rebuild(text)
		return
	}

	// Expand to full line boundaries in the post-edit text. Offsets
	// before the first touched line are untouched by the edit, so its
	// recorded start is valid in both coordinate systems; the end of the
	// last touched line lands at its old position shifted by delta.
	scanStart := t.recs[old.Start].Start
	scanEnd := t.recs[old.End].End() + delta
	if scanStart > scanEnd || scanEnd > len(text) {
		t.Rebuild(text)
		return
	}

	fresh := scanLines[T](text[scanStart:scanEnd])
	for i := range fresh {
		fresh[i].Start += scanStart
	}

	// A zero-length tail from the excerpt is an artifact of cutting the
	// text at a line break. Only the true end of the document carries a
	// genuine insertion-point record.
	if scanEnd < len(text) {
		if last := len(fresh) - 1; last >= 0 && fresh[last].Length == 0 {
			fresh = fresh[:last]
		}
	}

	t.splice(old, fresh)

	for i := old.Start + len(fresh); i < len(t.recs); i++ {
		t.recs[i].Start += delta
	}
}

// splice replaces the entries covered by old (inclusive) with fresh.
func (t *Table[T]) splice(old Span, fresh []Record[T]) {
	tail := t.recs[old.End+1:]
	out := make([]Record[T], 0, old.Start+len(fresh)+len(tail))
	out = append(out, t.recs[:old.Start]...)
	out = append(out, fresh...)
	out = append(out, tail...)
	t.recs = out
}
