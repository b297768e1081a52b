package linetable

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// applyString runs ApplyEdit with the post-edit text given as a string.
func applyString(tab *Table[note], text string, edit Range, delta int) {
	tab.ApplyEdit([]rune(text), edit, delta)
}

// checkMatchesScan verifies the table is equal, payloads aside, to a
// fresh scan of text.
func checkMatchesScan(t *testing.T, tab *Table[note], text string) {
	t.Helper()
	mustValidate(t, tab, len([]rune(text)))
	want := tableRanges(New[note]([]rune(text)))
	if diff := cmp.Diff(want, tableRanges(tab)); diff != "" {
		t.Errorf("table for %q mismatch (-want +got):\n%s", text, diff)
	}
}

func TestApplyEditSplitByInsertion(t *testing.T) {
	tab := newTable("abcd")

	// Insert "\n" at offset 2: "abcd" -> "ab\ncd".
	applyString(tab, "ab\ncd", Range{2, 1}, +1)

	want := []Range{{0, 3}, {3, 2}}
	if diff := cmp.Diff(want, tableRanges(tab)); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	mustValidate(t, tab, 5)
}

func TestApplyEditMergeByDeletion(t *testing.T) {
	tab := newTable("ab\ncd")

	// Delete the newline at offset 2: "ab\ncd" -> "abcd".
	applyString(tab, "abcd", Range{2, 0}, -1)

	want := []Range{{0, 4}}
	if diff := cmp.Diff(want, tableRanges(tab)); diff != "" {
		t.Errorf("table mismatch (-want +got):\n%s", diff)
	}
	mustValidate(t, tab, 4)
}

func TestApplyEditShiftsTrailingRecords(t *testing.T) {
	tab := newTable("ab\ncd\nef")
	tab.SetInfo(3, note{Class: "kept"})

	// Merge the first two lines; "ef" is untouched and keeps its payload,
	// its start shifted by the delta.
	applyString(tab, "abcd\nef", Range{2, 0}, -1)

	want := []Range{{0, 5}, {5, 2}}
	if diff := cmp.Diff(want, tableRanges(tab)); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}

	r, _ := tab.Get(2)
	if r.Info == nil || r.Info.Class != "kept" {
		t.Errorf("untouched record should keep its payload, got %v", r.Info)
	}
	r, _ = tab.Get(1)
	if r.Info != nil {
		t.Errorf("spliced record should have no payload, got %v", r.Info)
	}
}

func TestApplyEditClearsSplicedPayloads(t *testing.T) {
	tab := newTable("aa\nbb\ncc")
	for i := 1; i <= 3; i++ {
		tab.SetInfo(i, note{Class: "old"})
	}

	// Replace a character inside "bb": only that line is re-derived.
	applyString(tab, "aa\nxb\ncc", Range{3, 1}, 0)

	infos := make([]bool, 0, 3)
	for i := 1; i <= 3; i++ {
		r, _ := tab.Get(i)
		infos = append(infos, r.Info != nil)
	}
	want := []bool{true, false, true}
	if diff := cmp.Diff(want, infos); diff != "" {
		t.Errorf("payload survival mismatch (-want +got):\n%s", diff)
	}
	checkMatchesScan(t, tab, "aa\nxb\ncc")
}

func TestApplyEditAtDocumentStart(t *testing.T) {
	tab := newTable("bc\nd")

	applyString(tab, "abc\nd", Range{0, 1}, +1)
	checkMatchesScan(t, tab, "abc\nd")

	applyString(tab, "bc\nd", Range{0, 0}, -1)
	checkMatchesScan(t, tab, "bc\nd")
}

func TestApplyEditAtDocumentEnd(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		text    string
		edit    Range
		delta   int
	}{
		{"append char", "abc", "abcd", Range{3, 1}, +1},
		{"append after trailing newline", "abc\n", "abc\nx", Range{4, 1}, +1},
		{"delete last char", "abc", "ab", Range{2, 0}, -1},
		{"delete trailing newline", "ab\n", "ab", Range{2, 0}, -1},
		{"insert newline at end", "ab", "ab\n", Range{2, 1}, +1},
		{"replace final char", "abc", "abd", Range{2, 1}, 0},
		{"replace final char with newline", "abc", "ab\n", Range{2, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newTable(tt.initial)
			applyString(tab, tt.text, tt.edit, tt.delta)
			checkMatchesScan(t, tab, tt.text)
		})
	}
}

func TestApplyEditEmptyDocument(t *testing.T) {
	tab := newTable("")

	applyString(tab, "hello", Range{0, 5}, +5)
	checkMatchesScan(t, tab, "hello")

	applyString(tab, "", Range{0, 0}, -5)
	checkMatchesScan(t, tab, "")
}

func TestApplyEditRebuildEquivalence(t *testing.T) {
	// An edit spanning the entire previous text must match a full build.
	tab := newTable("one\ntwo\n")

	applyString(tab, "alpha\nbeta", Range{0, 10}, 10-8)
	checkMatchesScan(t, tab, "alpha\nbeta")
}

func TestApplyEditMalformedDescriptorRebuilds(t *testing.T) {
	tests := []struct {
		name  string
		edit  Range
		delta int
	}{
		{"negative start", Range{-1, 2}, 0},
		{"negative length", Range{0, -2}, 0},
		{"delta exceeds length", Range{0, 1}, 5},
		{"range past text end", Range{10, 10}, 0},
		{"pre-edit end past table", Range{0, 8}, -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tab := newTable("ab\ncd")
			tab.SetInfo(1, note{Class: "gone"})

			applyString(tab, "ab\ncdef appended", tt.edit, tt.delta)
			checkMatchesScan(t, tab, "ab\ncdef appended")

			// A full rebuild keeps only the sentinel; payloads are gone.
			for i := 1; i < tab.Len(); i++ {
				if r, _ := tab.Get(i); r.Info != nil {
					t.Errorf("record %d kept payload across rebuild", i)
				}
			}
		})
	}
}

func TestApplyEditInconsistentDeltaRebuilds(t *testing.T) {
	tab := newTable("ab\ncd")
	tab.SetInfo(1, note{Class: "gone"})

	// The delta claims the text grew by one, but the table already
	// describes all five characters. Splicing would over-shift the
	// trailing records; only a rebuild reconciles the two.
	applyString(tab, "ab\ncd", Range{2, 1}, +1)
	checkMatchesScan(t, tab, "ab\ncd")
	if r, _ := tab.Get(1); r.Info != nil {
		t.Error("record 1 kept payload across rebuild")
	}
}

func TestApplyEditReappliedIsStable(t *testing.T) {
	tab := newTable("abcd")

	applyString(tab, "ab\ncd", Range{2, 1}, +1)
	first := tableRanges(tab)

	applyString(tab, "ab\ncd", Range{2, 1}, +1)
	if diff := cmp.Diff(first, tableRanges(tab)); diff != "" {
		t.Errorf("reapplied edit changed the table (-first +second):\n%s", diff)
	}
	mustValidate(t, tab, 5)
}

func TestApplyEditBlankLines(t *testing.T) {
	tab := newTable("a\n\n\nb")

	// Delete one of the blank lines: "a\n\n\nb" -> "a\n\nb".
	applyString(tab, "a\n\nb", Range{2, 0}, -1)
	checkMatchesScan(t, tab, "a\n\nb")

	// Insert a blank line back.
	applyString(tab, "a\n\n\nb", Range{2, 1}, +1)
	checkMatchesScan(t, tab, "a\n\n\nb")
}

// TestApplyEditRandomSequence drives a table through a long arbitrary
// edit sequence, checking after every step that it matches a fresh scan.
func TestApplyEditRandomSequence(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	text := []rune(randomText(rng, 120))
	tab := New[note](text)

	for step := 0; step < 500; step++ {
		start := 0
		if len(text) > 0 {
			start = rng.Intn(len(text) + 1)
		}
		delLen := 0
		if start < len(text) {
			delLen = rng.Intn(len(text) - start + 1)
		}
		insert := []rune(randomText(rng, 12))

		next := make([]rune, 0, len(text)-delLen+len(insert))
		next = append(next, text[:start]...)
		next = append(next, insert...)
		next = append(next, text[start+delLen:]...)

		edit := Range{Start: start, Length: len(insert)}
		delta := len(insert) - delLen
		tab.ApplyEdit(next, edit, delta)
		text = next

		if err := tab.ValidateFor(len(text)); err != nil {
			t.Fatalf("step %d: invariant violated: %v", step, err)
		}
		want := tableRanges(New[note](text))
		if diff := cmp.Diff(want, tableRanges(tab)); diff != "" {
			t.Fatalf("step %d: table for %q diverged (-want +got):\n%s",
				step, string(text), diff)
		}
	}
}
