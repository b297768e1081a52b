package linetable

// scanLines splits text into line records, one per run of characters up
// to and including the next terminator. Offsets are relative to the start
// of text. The empty text yields a single zero-length record; a text
// ending exactly on a terminator yields an additional zero-length record
// for the insertion point after it.
//
// The scanner recognizes '\n' as the terminator. Callers that accept CRLF
// or CR input normalize it first (the buffer package does this on ingest).
func scanLines[T any](text []rune) []Record[T] {
	if len(text) == 0 {
		return []Record[T]{{}}
	}

	recs := make([]Record[T], 0, countLines(text))
	start := 0
	for i, c := range text {
		if c == '\n' {
			recs = append(recs, Record[T]{Start: start, Length: i + 1 - start})
			start = i + 1
		}
	}
	if start < len(text) {
		recs = append(recs, Record[T]{Start: start, Length: len(text) - start})
	} else {
		recs = append(recs, Record[T]{Start: start})
	}
	return recs
}

// countLines returns the number of records scanLines will produce for a
// non-empty text, so the slice can be allocated in one shot.
func countLines(text []rune) int {
	n := 1
	for _, c := range text {
		if c == '\n' {
			n++
		}
	}
	return n
}
