// Package tutor is the entry point for the operations the HTTP API and
// the CLI expose: selecting practice questions, evaluating answers, and
// reading mastery and learner state.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/metrics"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/store"
)

// DefaultSelectCount is used when a selection asks for no count.
const DefaultSelectCount = questions.MaxPerCall

// MasteryService reads mastery and learner state.
type MasteryService interface {
	Get(ctx context.Context, userID, concept string) (mastery.Record, error)
	Learner(ctx context.Context, id string) (*mastery.Learner, error)
	UpsertLearner(ctx context.Context, id, name, email string) (*mastery.Learner, error)
}

// QuestionBank looks questions up.
type QuestionBank interface {
	FindByID(ctx context.Context, id string) (*questions.Question, error)
	Concepts(ctx context.Context) ([]string, error)
}

// Selector picks practice questions.
type Selector interface {
	Select(ctx context.Context, userID, concept string, n int) (questions.Selection, error)
}

// Evaluator grades one answer.
type Evaluator interface {
	Evaluate(ctx context.Context, req evaluator.Request) (*evaluator.Result, error)
}

// EvaluateRequest is one answer submission. Concept defaults to the
// question's concept.
type EvaluateRequest struct {
	UserID     string
	Concept    string
	QuestionID string
	Answer     string
	SourceCode string
	LanguageID int
}

// Service wires the engine components together.
type Service struct {
	mastery   MasteryService
	bank      QuestionBank
	selector  Selector
	evaluator Evaluator
	audit     store.AuditRepo
	validate  *validator.Validate
	log       *logger.Logger
	maxSelect int
}

// Option configures a Service.
type Option func(*Service)

// WithAuditRepo enables audit listing.
func WithAuditRepo(r store.AuditRepo) Option {
	return func(s *Service) { s.audit = r }
}

// WithSelectLimit caps how many questions one selection returns.
func WithSelectLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSelect = n
		}
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// New creates a Service.
func New(m MasteryService, bank QuestionBank, sel Selector, ev Evaluator, opts ...Option) *Service {
	s := &Service{
		mastery:   m,
		bank:      bank,
		selector:  sel,
		evaluator: ev,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		log:       logger.Nop(),
		maxSelect: questions.MaxPerCall,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SelectQuestions returns up to n questions matched to the learner's
// mastery of concept, with the mastery snapshot used.
func (s *Service) SelectQuestions(ctx context.Context, userID, concept string, n int) (questions.Selection, error) {
	if err := required("user_id", userID); err != nil {
		return questions.Selection{}, err
	}
	if err := required("concept", concept); err != nil {
		return questions.Selection{}, err
	}
	if n <= 0 {
		n = DefaultSelectCount
	}
	n = min(n, s.maxSelect)

	sel, err := s.selector.Select(ctx, userID, concept, n)
	if err != nil {
		return questions.Selection{}, fmt.Errorf("select questions: %w", err)
	}
	metrics.RecordSelection(len(sel.Questions))
	return sel, nil
}

// EvaluateAnswer grades a submission and updates mastery.
func (s *Service) EvaluateAnswer(ctx context.Context, req EvaluateRequest) (*evaluator.Result, error) {
	if err := required("user_id", req.UserID); err != nil {
		return nil, err
	}
	if err := required("qid", req.QuestionID); err != nil {
		return nil, err
	}

	q, err := s.bank.FindByID(ctx, req.QuestionID)
	if err != nil {
		return nil, fmt.Errorf("load question: %w", err)
	}
	if q == nil {
		return nil, &NotFoundError{Kind: "question", ID: req.QuestionID}
	}

	concept := strings.TrimSpace(req.Concept)
	if concept == "" {
		concept = q.Concept
	}

	res, err := s.evaluator.Evaluate(ctx, evaluator.Request{
		UserID:   req.UserID,
		Concept:  concept,
		Question: *q,
		Submission: evaluator.Submission{
			Answer:     req.Answer,
			SourceCode: req.SourceCode,
			LanguageID: req.LanguageID,
		},
	})
	var inErr *evaluator.InputError
	if errors.As(err, &inErr) {
		return nil, &ValidationError{Field: inErr.Field, Message: inErr.Message}
	}
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}

	s.log.Info("answer evaluated",
		"user_id", req.UserID,
		"concept", concept,
		"question_id", q.ID,
		"score", res.Score,
		"quality", res.Quality,
		"outcome", res.Outcome.String(),
	)
	return res, nil
}

// GetMastery returns the learner's record for concept, or the defaults.
func (s *Service) GetMastery(ctx context.Context, userID, concept string) (mastery.Record, error) {
	if err := required("user_id", userID); err != nil {
		return mastery.Record{}, err
	}
	if err := required("concept", concept); err != nil {
		return mastery.Record{}, err
	}
	return s.mastery.Get(ctx, userID, concept)
}

// Concepts lists the question bank's concepts, sorted.
func (s *Service) Concepts(ctx context.Context) ([]string, error) {
	return s.bank.Concepts(ctx)
}

// UpsertLearner sets profile fields without touching mastery.
func (s *Service) UpsertLearner(ctx context.Context, id, name, email string) (*mastery.Learner, error) {
	if err := required("user_id", id); err != nil {
		return nil, err
	}
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "omitempty,email"); err != nil {
		return nil, &ValidationError{Field: "email", Message: "must be a valid email address"}
	}
	return s.mastery.UpsertLearner(ctx, id, strings.TrimSpace(name), email)
}

// GetLearner returns the learner's profile and mastery map.
func (s *Service) GetLearner(ctx context.Context, id string) (*mastery.Learner, error) {
	if err := required("user_id", id); err != nil {
		return nil, err
	}
	l, err := s.mastery.Learner(ctx, id)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, &NotFoundError{Kind: "user", ID: id}
	}
	return l, nil
}

// AuditLog lists evaluation entries, newest first.
func (s *Service) AuditLog(ctx context.Context, f store.AuditFilter) ([]store.AuditEntry, error) {
	if s.audit == nil {
		return nil, errors.New("audit log not configured")
	}
	return s.audit.List(ctx, f)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}
