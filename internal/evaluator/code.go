package evaluator

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/adaptutor/internal/grading"
	"github.com/abhisek/adaptutor/internal/judge"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/metrics"
	"github.com/abhisek/adaptutor/internal/questions"
)

// QualityFromPassRate maps a testcase pass fraction to a quality grade.
func QualityFromPassRate(score float64) int {
	switch {
	case score >= 1.0:
		return 5
	case score >= 0.75:
		return 4
	case score >= 0.5:
		return 3
	case score > 0:
		return 2
	default:
		return 1
	}
}

// gradeCode runs every testcase independently on a bounded pool and
// scores the pass fraction. The grader may replace the quality and add
// feedback but never touches the score.
func (e *Evaluator) gradeCode(ctx context.Context, log *logger.Logger, q questions.Question, sub Submission, res *Result) {
	res.Details.Grading = "judge"
	if len(q.Testcases) == 0 {
		res.Score, res.Quality = 0.5, DefaultQuality
		res.Details.Note = "No testcases to evaluate; consider manual review."
		res.Details.ManualReview = true
		return
	}

	lang := sub.LanguageID
	if lang == 0 {
		lang = q.LanguageID
	}
	if lang == 0 {
		lang = e.cfg.DefaultLanguageID
	}

	results := e.runTestcases(ctx, sub.SourceCode, lang, q.Testcases)

	passed, broken := 0, 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
		if r.Error != "" {
			broken++
		}
	}
	total := len(results)
	res.Score = float64(passed) / float64(total)
	res.Quality = QualityFromPassRate(res.Score)
	res.Details.Testcases = results
	res.Details.Passed = passed
	res.Details.Total = total

	if broken > 0 {
		log.Warn("testcases failed to execute", "broken", broken, "total", total)
		res.note(Outcome{Step: StepJudge, Status: Degraded, Reason: fmt.Sprintf("%d of %d testcases failed to execute", broken, total)})
	} else {
		res.note(Outcome{Step: StepJudge, Status: Succeeded})
	}

	if e.grader == nil {
		return
	}
	parsed, raw, err := e.grade(ctx, grading.CodePrompt(sub.SourceCode, q.Testcases, results, e.cfg.CodeMaxTokens))
	res.Details.GraderRaw = raw
	if err != nil {
		log.Warn("code grading failed, keeping pass-rate quality", "error", err)
		res.note(Outcome{Step: StepGrader, Status: Degraded, Reason: err.Error()})
		return
	}
	if parsed.HasQuality {
		res.Quality = parsed.Quality
	}
	res.Details.Feedback = parsed.Feedback
	res.Details.Suggestion = parsed.Suggestion
	res.note(Outcome{Step: StepGrader, Status: Succeeded})
}

// runTestcases returns one result per testcase in testcase order.
func (e *Evaluator) runTestcases(ctx context.Context, source string, lang int, tcs []questions.Testcase) []TestcaseResult {
	results := make([]TestcaseResult, len(tcs))

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, tc := range tcs {
		g.Go(func() error {
			results[i] = e.runTestcase(ctx, i, source, lang, tc)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (e *Evaluator) runTestcase(ctx context.Context, i int, source string, lang int, tc questions.Testcase) TestcaseResult {
	ctx, span := e.tracer.Start(ctx, "judge.Run", trace.WithAttributes(attribute.Int("testcase", i)))
	defer span.End()

	out := TestcaseResult{Stdin: tc.Stdin, Expected: strings.TrimSpace(tc.Expected)}
	if e.judge == nil {
		out.Error = "code judge not configured"
		metrics.RecordTestcase("error")
		return out
	}

	state, err := e.judge.Run(ctx, judge.Submission{SourceCode: source, LanguageID: lang, Stdin: tc.Stdin})
	if err != nil {
		span.RecordError(err)
		out.Error = err.Error()
		metrics.RecordTestcase("error")
		return out
	}

	out.Stdout = strings.TrimSpace(state.Stdout)
	out.Stderr = state.Stderr
	out.CompileOutput = state.CompileOutput
	out.Status = state.StatusDescription
	out.Time = state.Time
	out.Memory = state.Memory
	if state.Status == judge.StatusTimeout {
		out.Error = "execution timed out"
		if state.Err != nil {
			out.Error = state.Err.Error()
		}
		metrics.RecordTestcase("error")
		return out
	}

	out.Passed = out.Stdout == out.Expected
	if out.Passed {
		metrics.RecordTestcase("passed")
	} else {
		metrics.RecordTestcase("failed")
	}
	return out
}
