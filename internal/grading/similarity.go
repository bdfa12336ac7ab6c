package grading

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const (
	// FeedbackHeuristic accompanies every similarity-based grade.
	FeedbackHeuristic = "Auto-evaluated by heuristic; consider manual review."
	// FeedbackNoReference is used when the question has no expected answer.
	FeedbackNoReference = "No canonical answer available; manual review recommended."
)

// Similarity returns the matching-blocks ratio of the two strings,
// compared case-insensitively character by character. 1.0 is identical.
func Similarity(expected, answer string) float64 {
	a := strings.Split(strings.ToLower(expected), "")
	b := strings.Split(strings.ToLower(answer), "")
	return difflib.NewMatcher(a, b).Ratio()
}

// QualityFromRatio maps a similarity ratio to a quality grade.
func QualityFromRatio(ratio float64) int {
	switch {
	case ratio > 0.9:
		return 5
	case ratio > 0.75:
		return 4
	case ratio > 0.5:
		return 3
	case ratio > 0.3:
		return 2
	default:
		return 1
	}
}

// Heuristic is a deterministic grade.
type Heuristic struct {
	Score        float64
	Quality      int
	Feedback     string
	ManualReview bool
}

// Fallback grades answer against expected without a grader. An empty
// expected answer yields 0.5/3 flagged for manual review.
func Fallback(expected, answer string) Heuristic {
	if strings.TrimSpace(expected) == "" {
		return Heuristic{Score: 0.5, Quality: 3, Feedback: FeedbackNoReference, ManualReview: true}
	}
	ratio := Similarity(expected, answer)
	return Heuristic{Score: ratio, Quality: QualityFromRatio(ratio), Feedback: FeedbackHeuristic}
}
