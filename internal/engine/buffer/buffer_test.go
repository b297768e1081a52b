package buffer

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/linetab/internal/engine/linetable"
)

type note struct {
	Class string
}

func TestNew(t *testing.T) {
	b := New[note]()

	if !b.IsEmpty() {
		t.Error("new buffer should be empty")
	}
	if b.Len() != 0 {
		t.Errorf("expected length 0, got %d", b.Len())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if b.SessionID() == "" {
		t.Error("buffer should carry a session ID")
	}
	if err := b.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestNewFromString(t *testing.T) {
	b := NewFromString[note]("line1\nline2\nline3")

	if b.LineCount() != 3 {
		t.Errorf("expected 3 lines, got %d", b.LineCount())
	}
	for i, want := range []string{"line1", "line2", "line3"} {
		if got := b.LineText(i + 1); got != want {
			t.Errorf("line %d: expected %q, got %q", i+1, want, got)
		}
	}
}

func TestNewFromStringNormalizesEndings(t *testing.T) {
	b := NewFromString[note]("a\r\nb\rc\n")

	if got := b.Text(); got != "a\nb\nc\n" {
		t.Errorf("expected normalized content, got %q", got)
	}
	if b.LineEnding() != LineEndingCRLF {
		t.Errorf("expected detected CRLF ending, got %v", b.LineEnding())
	}
}

func TestWriteToAppliesLineEnding(t *testing.T) {
	b := NewFromString[note]("a\r\nb\r\n")

	var sb strings.Builder
	if _, err := b.WriteTo(&sb); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if got := sb.String(); got != "a\r\nb\r\n" {
		t.Errorf("expected CRLF on write-out, got %q", got)
	}
}

func TestInsertUpdatesTable(t *testing.T) {
	b := NewFromString[note]("abcd")

	end, err := b.Insert(2, "\n")
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if end != 3 {
		t.Errorf("expected end offset 3, got %d", end)
	}

	if b.LineCount() != 2 {
		t.Fatalf("expected 2 lines, got %d", b.LineCount())
	}
	r1, _ := b.Line(1)
	r2, _ := b.Line(2)
	if r1.Start != 0 || r1.Length != 3 || r2.Start != 3 || r2.Length != 2 {
		t.Errorf("expected (0,3)(3,2), got %v %v", r1, r2)
	}
	if err := b.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestDeleteMergesLines(t *testing.T) {
	b := NewFromString[note]("ab\ncd")

	if err := b.Delete(2, 3); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if b.Text() != "abcd" {
		t.Errorf("expected %q, got %q", "abcd", b.Text())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
}

func TestReplaceAcrossLines(t *testing.T) {
	b := NewFromString[note]("one\ntwo\nthree")

	if _, err := b.Replace(2, 9, "X\nY"); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	want := "onX\nYhree"
	if b.Text() != want {
		t.Errorf("expected %q, got %q", want, b.Text())
	}
	if err := b.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestEditValidation(t *testing.T) {
	b := NewFromString[note]("abc")

	if _, err := b.Insert(-1, "x"); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if _, err := b.Insert(4, "x"); !errors.Is(err, ErrOffsetOutOfRange) {
		t.Errorf("expected ErrOffsetOutOfRange, got %v", err)
	}
	if err := b.Delete(2, 1); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
	if _, err := b.Replace(0, 9, "x"); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("expected ErrRangeInvalid, got %v", err)
	}
}

func TestApplyEditResult(t *testing.T) {
	b := NewFromString[note]("hello world")

	res, err := b.ApplyEdit(NewEdit(NewRange(6, 11), "there"))
	if err != nil {
		t.Fatalf("ApplyEdit: %v", err)
	}
	if res.OldText != "world" {
		t.Errorf("expected old text %q, got %q", "world", res.OldText)
	}
	if res.Delta != 0 {
		t.Errorf("expected delta 0, got %d", res.Delta)
	}
	if res.NewRange != (Range{Start: 6, End: 11}) {
		t.Errorf("unexpected new range %v", res.NewRange)
	}
	if b.Text() != "hello there" {
		t.Errorf("expected %q, got %q", "hello there", b.Text())
	}
}

func TestObserverNotifiedOncePerEdit(t *testing.T) {
	b := NewFromString[note]("abc")

	var calls int
	var lastEdit linetable.Range
	var lastDelta int
	b.Observe(ObserverFunc(func(text []rune, edit linetable.Range, delta int) {
		calls++
		lastEdit = edit
		lastDelta = delta
	}))

	if _, err := b.Insert(3, "\ndef"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected exactly 1 notification, got %d", calls)
	}
	if lastEdit != (linetable.Range{Start: 3, Length: 4}) {
		t.Errorf("unexpected edited range %v", lastEdit)
	}
	if lastDelta != 4 {
		t.Errorf("expected delta 4, got %d", lastDelta)
	}
}

func TestObserverSeesNormalizedCoordinates(t *testing.T) {
	b := New[note]()

	var gotLen int
	var gotDelta int
	b.Observe(ObserverFunc(func(text []rune, edit linetable.Range, delta int) {
		gotLen = edit.Length
		gotDelta = delta
	}))

	// CRLF input shrinks during normalization; the observer must see the
	// post-normalization length and delta.
	if _, err := b.Insert(0, "a\r\nb"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if gotLen != 3 || gotDelta != 3 {
		t.Errorf("expected normalized length/delta 3/3, got %d/%d", gotLen, gotDelta)
	}
	if b.Text() != "a\nb" {
		t.Errorf("expected normalized text, got %q", b.Text())
	}
}

func TestSetText(t *testing.T) {
	b := NewFromString[note]("old\ncontent\n")

	b.SetText("brand new")
	if b.Text() != "brand new" {
		t.Errorf("expected replaced text, got %q", b.Text())
	}
	if b.LineCount() != 1 {
		t.Errorf("expected 1 line, got %d", b.LineCount())
	}
	if err := b.Validate(); err != nil {
		t.Errorf("invariant violated: %v", err)
	}
}

func TestLineInfoAccess(t *testing.T) {
	b := NewFromString[note]("aa\nbb")

	if !b.SetLineInfo(2, note{Class: "code"}) {
		t.Fatal("SetLineInfo should succeed")
	}
	info, ok := b.LineInfo(2)
	if !ok || info.Class != "code" {
		t.Errorf("expected payload, got %v ok=%v", info, ok)
	}

	// Editing the annotated line clears its payload.
	if _, err := b.Insert(4, "x"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, ok := b.LineInfo(2); ok {
		t.Error("payload should be cleared after an edit to the line")
	}
}

func TestOffsetPointRoundTrip(t *testing.T) {
	b := NewFromString[note]("aa\nbbb\nc")

	tests := []struct {
		off  int
		want Point
	}{
		{0, Point{Line: 1, Column: 0}},
		{2, Point{Line: 1, Column: 2}},
		{3, Point{Line: 2, Column: 0}},
		{7, Point{Line: 3, Column: 0}},
		{8, Point{Line: 3, Column: 1}}, // end-of-document insertion point
	}

	for _, tt := range tests {
		p, ok := b.OffsetToPoint(tt.off)
		if !ok || p != tt.want {
			t.Errorf("OffsetToPoint(%d) = %v,%v, want %v", tt.off, p, ok, tt.want)
			continue
		}
		off, ok := b.PointToOffset(p)
		if !ok || off != tt.off {
			t.Errorf("PointToOffset(%v) = %d,%v, want %d", p, off, ok, tt.off)
		}
	}

	if _, ok := b.OffsetToPoint(9); ok {
		t.Error("OffsetToPoint past end of document should be absent")
	}
}

func TestRevisionAdvances(t *testing.T) {
	b := NewFromString[note]("abc")
	r0 := b.RevisionID()

	if _, err := b.Insert(0, "x"); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if b.RevisionID() == r0 {
		t.Error("revision should advance after an edit")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	b := NewFromString[note]("one\ntwo")
	snap := b.Snapshot()

	if _, err := b.Insert(0, "zero\n"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if snap.Text() != "one\ntwo" {
		t.Errorf("snapshot should not see later edits, got %q", snap.Text())
	}
	if snap.LineCount() != 2 {
		t.Errorf("expected 2 lines in snapshot, got %d", snap.LineCount())
	}
	if got := snap.LineText(2); got != "two" {
		t.Errorf("expected %q, got %q", "two", got)
	}
	if idx, ok := snap.LineOf(4); !ok || idx != 2 {
		t.Errorf("LineOf(4) = %d,%v, want 2,true", idx, ok)
	}
}

func TestDetectLineEnding(t *testing.T) {
	tests := []struct {
		text string
		want LineEnding
	}{
		{"plain", LineEndingLF},
		{"a\nb\n", LineEndingLF},
		{"a\r\nb\r\n", LineEndingCRLF},
		{"a\rb\r", LineEndingCR},
		{"a\r\nb\nc\r\n", LineEndingCRLF},
	}

	for _, tt := range tests {
		if got := DetectLineEnding(tt.text); got != tt.want {
			t.Errorf("DetectLineEnding(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
