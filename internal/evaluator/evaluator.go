// Package evaluator grades a submitted answer, feeds the derived quality
// into the mastery scheduler, and appends the evaluation to the audit log.
package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/adaptutor/internal/grading"
	"github.com/abhisek/adaptutor/internal/judge"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/metrics"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/store"
	"github.com/abhisek/adaptutor/internal/telemetry"
)

const (
	DefaultWorkers       = 4
	DefaultGraderTimeout = 30 * time.Second
	DefaultAuditTimeout  = 5 * time.Second
	// DefaultQuality stands in when no grade produced one.
	DefaultQuality = 3
)

// Judge runs one program against one stdin.
type Judge interface {
	Run(ctx context.Context, sub judge.Submission) (judge.SubmissionState, error)
}

// Scheduler applies a quality signal to the learner's mastery.
type Scheduler interface {
	Apply(ctx context.Context, userID, concept string, quality int) (mastery.Result, error)
}

// AuditLog receives one entry per evaluation.
type AuditLog interface {
	Append(ctx context.Context, e *store.AuditEntry) error
}

// Config tunes the evaluator.
type Config struct {
	Workers              int
	GraderTimeout        time.Duration
	ShortAnswerMaxTokens int
	CodeMaxTokens        int
	// DefaultLanguageID is used when neither submission nor question
	// names a language.
	DefaultLanguageID int
}

// Evaluator dispatches by question type. Judge and grader are optional;
// without them code testcases fail to execute and text answers are graded
// by lexical similarity.
type Evaluator struct {
	cfg       Config
	scheduler Scheduler
	judge     Judge
	grader    grading.Grader
	audit     AuditLog
	log       *logger.Logger
	tracer    trace.Tracer
}

// Option configures an Evaluator.
type Option func(*Evaluator)

func WithJudge(j Judge) Option {
	return func(e *Evaluator) { e.judge = j }
}

func WithGrader(g grading.Grader) Option {
	return func(e *Evaluator) { e.grader = g }
}

func WithAuditLog(a AuditLog) Option {
	return func(e *Evaluator) { e.audit = a }
}

func WithLogger(l *logger.Logger) Option {
	return func(e *Evaluator) { e.log = l }
}

// New creates an Evaluator that writes mastery through s.
func New(s Scheduler, cfg Config, opts ...Option) *Evaluator {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.GraderTimeout <= 0 {
		cfg.GraderTimeout = DefaultGraderTimeout
	}
	if cfg.DefaultLanguageID <= 0 {
		cfg.DefaultLanguageID = questions.DefaultLanguageID
	}
	e := &Evaluator{
		cfg:       cfg,
		scheduler: s,
		log:       logger.Nop(),
		tracer:    telemetry.Tracer("github.com/abhisek/adaptutor/internal/evaluator"),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate grades req, updates mastery and writes the audit entry. Only a
// structurally invalid submission is an error; every external failure
// degrades to a fallback and is reported in Result.Outcomes.
//
// The evaluation is detached from ctx cancellation: once started it runs
// to completion or to its own timeouts.
func (e *Evaluator) Evaluate(ctx context.Context, req Request) (*Result, error) {
	q := req.Question
	if q.Type == questions.TypeCode && strings.TrimSpace(req.Submission.SourceCode) == "" {
		return nil, &InputError{Field: "source_code", Message: "source_code is required for code questions"}
	}

	start := time.Now()
	ctx, span := e.tracer.Start(context.WithoutCancel(ctx), "evaluator.Evaluate",
		trace.WithAttributes(
			attribute.String("question.id", q.ID),
			attribute.String("question.type", string(q.Type)),
			attribute.String("concept", req.Concept),
		))
	defer span.End()

	log := e.log.With("user_id", req.UserID, "concept", req.Concept, "question_id", q.ID)
	res := &Result{
		EvaluationID: uuid.NewString(),
		QuestionID:   q.ID,
		Type:         q.Type,
		Quality:      -1,
	}

	switch q.Type {
	case questions.TypeMCQ:
		gradeMCQ(q, req.Submission.Answer, res)
	case questions.TypeShortAnswer, questions.TypeEssay:
		e.gradeText(ctx, log, q, req.Submission.Answer, res)
	case questions.TypeCode:
		e.gradeCode(ctx, log, q, req.Submission, res)
	default:
		res.Score, res.Quality = 0.5, DefaultQuality
		res.Details.Note = "Unknown question type"
		res.Details.ManualReview = true
	}

	if res.Quality < 0 || res.Quality > mastery.MaxQuality {
		res.Quality = DefaultQuality
	}
	span.SetAttributes(attribute.Float64("score", res.Score), attribute.Int("quality", res.Quality))

	e.applyMastery(ctx, log, req, res)
	e.appendAudit(ctx, log, req, res)

	res.Outcome = Overall(res.Outcomes)
	for _, o := range res.Outcomes {
		metrics.RecordStep(o.Step, o.Status.String())
	}
	if res.Outcome != Succeeded {
		span.SetStatus(codes.Error, res.Outcome.String())
	}
	metrics.RecordEvaluation(string(q.Type), res.Outcome.String(), time.Since(start))
	return res, nil
}

func gradeMCQ(q questions.Question, answer string, res *Result) {
	res.Details.Grading = "exact"
	res.Details.CorrectOption = q.CorrectOption
	if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectOption)) {
		res.Score, res.Quality = 1.0, 5
		return
	}
	res.Score, res.Quality = 0.0, 1
}

func (e *Evaluator) applyMastery(ctx context.Context, log *logger.Logger, req Request, res *Result) {
	ctx, span := e.tracer.Start(ctx, "mastery.Apply")
	defer span.End()

	out, err := e.scheduler.Apply(ctx, req.UserID, req.Concept, res.Quality)
	if err != nil {
		span.RecordError(err)
		log.Warn("mastery update failed", "error", err)
		result := "error"
		if errors.Is(err, mastery.ErrConflict) {
			result = "conflict"
		}
		metrics.RecordMasteryUpdate(result)
		res.note(Outcome{Step: StepScheduler, Status: Failed, Reason: err.Error()})
		return
	}
	metrics.RecordMasteryUpdate("ok")
	rec, due := out.Record, out.NextDue
	res.Mastery = &rec
	res.NextDue = &due
	res.note(Outcome{Step: StepScheduler, Status: Succeeded})
}

func (e *Evaluator) appendAudit(ctx context.Context, log *logger.Logger, req Request, res *Result) {
	if e.audit == nil {
		return
	}

	details, err := json.Marshal(res.Details)
	if err != nil {
		details = []byte(fmt.Sprintf(`{"marshal_error":%q}`, err.Error()))
	}
	entry := &store.AuditEntry{
		EvaluationID: res.EvaluationID,
		UserID:       req.UserID,
		Concept:      req.Concept,
		QuestionID:   res.QuestionID,
		Answer:       req.Submission.Answer,
		SourceCode:   req.Submission.SourceCode,
		Score:        res.Score,
		Quality:      res.Quality,
		Details:      details,
		Outcome:      Overall(res.Outcomes).String(),
	}

	actx, cancel := context.WithTimeout(ctx, DefaultAuditTimeout)
	defer cancel()
	if err := e.audit.Append(actx, entry); err != nil {
		log.Warn("audit append failed", "evaluation_id", res.EvaluationID, "error", err)
		res.note(Outcome{Step: StepAudit, Status: Degraded, Reason: err.Error()})
		return
	}
	res.note(Outcome{Step: StepAudit, Status: Succeeded})
}

// grade asks the grader with its own timeout and parses the reply. A nil
// error means the parse is usable.
func (e *Evaluator) grade(ctx context.Context, p grading.Prompt) (grading.ParsedGrading, string, error) {
	ctx, span := e.tracer.Start(ctx, "grader.Grade", trace.WithAttributes(attribute.String("purpose", p.Purpose)))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.GraderTimeout)
	defer cancel()

	raw, err := e.grader.Grade(ctx, p)
	if err != nil {
		span.RecordError(err)
		return grading.ParsedGrading{Kind: grading.Failed, Reason: err.Error()}, "", err
	}

	parsed := grading.Parse(raw)
	metrics.RecordGraderParse(parsed.Kind.String())
	span.SetAttributes(attribute.String("parse", parsed.Kind.String()))
	if !parsed.Usable() {
		return parsed, raw, fmt.Errorf("parse grader reply: %s", parsed.Reason)
	}
	return parsed, raw, nil
}
