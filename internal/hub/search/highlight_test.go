package search

import (
	"strings"
	"testing"
)

func joinSegments(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestHighlightSplitsMatchedRuns(t *testing.T) {
	segs := Highlight("Algebra Quiz", []MatchRange{{Start: 8, End: 12}})

	if joinSegments(segs) != "Algebra Quiz" {
		t.Fatalf("segments must reassemble the input, got %q", joinSegments(segs))
	}
	if len(segs) != 2 {
		t.Fatalf("want 2 segments, got %d", len(segs))
	}
	if segs[0].Matched || !segs[1].Matched {
		t.Fatalf("wrong matched flags: %+v", segs)
	}
	if segs[1].Text != "Quiz" {
		t.Fatalf("matched segment: want Quiz, got %q", segs[1].Text)
	}
}

func TestHighlightNoRanges(t *testing.T) {
	segs := Highlight("plain text", nil)
	if len(segs) != 1 || segs[0].Matched {
		t.Fatalf("want single plain segment, got %+v", segs)
	}
}

func TestHighlightClampsOutOfRange(t *testing.T) {
	// Stale ranges against shorter text must clamp, not panic.
	segs := Highlight("abc", []MatchRange{{Start: 1, End: 99}})
	if joinSegments(segs) != "abc" {
		t.Fatalf("reassembled %q", joinSegments(segs))
	}
	if !segs[len(segs)-1].Matched {
		t.Fatalf("clamped range should still mark the tail: %+v", segs)
	}
}

func TestHighlightSkipsInvertedAndOverlapping(t *testing.T) {
	segs := Highlight("abcdef", []MatchRange{
		{Start: 4, End: 2},   // inverted, skipped
		{Start: 1, End: 3},   // kept
		{Start: 2, End: 4},   // overlaps previous, clamped to [3,4)
		{Start: 50, End: 60}, // beyond text, skipped
	})
	if joinSegments(segs) != "abcdef" {
		t.Fatalf("reassembled %q", joinSegments(segs))
	}
}

func TestHighlightEmptyText(t *testing.T) {
	if segs := Highlight("", []MatchRange{{Start: 0, End: 1}}); segs != nil {
		t.Fatalf("empty text: want nil, got %+v", segs)
	}
}
