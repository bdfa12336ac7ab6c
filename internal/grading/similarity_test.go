package grading

import (
	"math"
	"testing"
)

func TestSimilarity(t *testing.T) {
	if r := Similarity("First In First Out", "first in first out"); r != 1 {
		t.Fatalf("expected case-insensitive identity, got %f", r)
	}
	if r := Similarity("abc", "xyz"); r != 0 {
		t.Fatalf("expected 0 for disjoint strings, got %f", r)
	}
	// 2*M/T with M=3 ("abc") and T=7.
	if r := Similarity("abcd", "abc"); math.Abs(r-6.0/7.0) > 1e-9 {
		t.Fatalf("expected 6/7, got %f", r)
	}
}

func TestQualityFromRatio(t *testing.T) {
	tests := []struct {
		ratio float64
		want  int
	}{
		{1.0, 5},
		{0.91, 5},
		{0.9, 4},
		{0.76, 4},
		{0.75, 3},
		{0.51, 3},
		{0.5, 2},
		{0.31, 2},
		{0.3, 1},
		{0, 1},
	}
	for _, tt := range tests {
		if got := QualityFromRatio(tt.ratio); got != tt.want {
			t.Errorf("QualityFromRatio(%v) = %d, want %d", tt.ratio, got, tt.want)
		}
	}
}

func TestFallback(t *testing.T) {
	h := Fallback("", "anything")
	if h.Score != 0.5 || h.Quality != 3 || !h.ManualReview {
		t.Fatalf("unexpected no-reference grade %+v", h)
	}

	h = Fallback("a stack is last in first out", "A stack is last in first out")
	if h.Score != 1 || h.Quality != 5 || h.ManualReview {
		t.Fatalf("unexpected exact grade %+v", h)
	}
	if h.Feedback != FeedbackHeuristic {
		t.Fatalf("unexpected feedback %q", h.Feedback)
	}
}
