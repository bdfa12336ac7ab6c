package evaluator

import (
	"context"
	"strings"

	"github.com/abhisek/adaptutor/internal/grading"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/questions"
)

// gradeText grades short answers and essays with the rubric grader,
// falling back to lexical similarity when the grader is missing, errors,
// or replies with nothing parseable.
func (e *Evaluator) gradeText(ctx context.Context, log *logger.Logger, q questions.Question, answer string, res *Result) {
	if strings.TrimSpace(q.ExpectedAnswer) == "" {
		h := grading.Fallback("", answer)
		res.Score, res.Quality = h.Score, h.Quality
		res.Details.Grading = "heuristic"
		res.Details.Feedback = h.Feedback
		res.Details.ManualReview = true
		return
	}

	if e.grader == nil {
		applyHeuristic(q.ExpectedAnswer, answer, res)
		return
	}

	parsed, raw, err := e.grade(ctx, grading.ShortAnswerPrompt(q.ExpectedAnswer, answer, e.cfg.ShortAnswerMaxTokens))
	res.Details.GraderRaw = raw
	if err != nil {
		log.Warn("grader unavailable, using similarity", "error", err)
		res.note(Outcome{Step: StepGrader, Status: Degraded, Reason: err.Error()})
		applyHeuristic(q.ExpectedAnswer, answer, res)
		return
	}

	res.Quality = DefaultQuality
	if parsed.HasQuality {
		res.Quality = parsed.Quality
	}
	switch {
	case parsed.HasScore:
		res.Score = parsed.Score
	default:
		res.Score = float64(res.Quality) / 5
	}
	res.Details.Grading = parsed.Kind.String()
	res.Details.Feedback = parsed.Feedback
	res.note(Outcome{Step: StepGrader, Status: Succeeded})
}

func applyHeuristic(expected, answer string, res *Result) {
	h := grading.Fallback(expected, answer)
	sim := h.Score
	res.Score, res.Quality = h.Score, h.Quality
	res.Details.Grading = "heuristic"
	res.Details.Similarity = &sim
	res.Details.Feedback = h.Feedback
}
