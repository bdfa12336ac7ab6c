package questiongen

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/questions"
)

// DefaultFillAttempts bounds regeneration after a retryable validation
// failure.
const DefaultFillAttempts = 2

// Bank is the part of the question bank the filler reads and writes.
type Bank interface {
	Find(ctx context.Context, concept string, d questions.Difficulty) ([]questions.Question, error)
	Add(ctx context.Context, q questions.Question) (string, bool, error)
}

// BankFiller generates a question for an exhausted level and stores it,
// so later selections find it in the bank.
type BankFiller struct {
	gen      Generator
	bank     Bank
	typ      questions.Type
	attempts int
	log      *logger.Logger
}

// FillerOption configures a BankFiller.
type FillerOption func(*BankFiller)

// WithType fixes the generated question type.
func WithType(t questions.Type) FillerOption {
	return func(f *BankFiller) { f.typ = t }
}

// WithAttempts sets how many generations are tried per fill.
func WithAttempts(n int) FillerOption {
	return func(f *BankFiller) { f.attempts = n }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) FillerOption {
	return func(f *BankFiller) { f.log = l }
}

// NewBankFiller creates a filler.
func NewBankFiller(gen Generator, bank Bank, opts ...FillerOption) *BankFiller {
	f := &BankFiller{gen: gen, bank: bank, attempts: DefaultFillAttempts, log: logger.Nop()}
	for _, o := range opts {
		o(f)
	}
	if f.attempts < 1 {
		f.attempts = 1
	}
	return f
}

// Fill implements questions.Filler. It returns nil without error when the
// generated prompt already exists under an excluded id.
func (f *BankFiller) Fill(ctx context.Context, concept string, d questions.Difficulty, exclude []string) (*questions.Question, error) {
	existing, err := f.bank.Find(ctx, concept, d)
	if err != nil {
		return nil, fmt.Errorf("list prior questions: %w", err)
	}
	prior := make([]string, 0, len(existing))
	for _, q := range existing {
		prior = append(prior, q.Prompt)
	}

	input := Input{Concept: concept, Difficulty: d, Type: f.typ, PriorQuestions: prior}

	var q *questions.Question
	for attempt := 1; ; attempt++ {
		q, err = f.gen.Generate(ctx, input)
		if err == nil {
			break
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || !verr.Retryable || attempt >= f.attempts {
			return nil, err
		}
		f.log.Debug("generated question rejected", "concept", concept, "difficulty", d, "validator", verr.Validator, "reason", verr.Message)
	}

	id, inserted, err := f.bank.Add(ctx, *q)
	if err != nil {
		return nil, fmt.Errorf("store generated question: %w", err)
	}
	if slices.Contains(exclude, id) {
		return nil, nil
	}
	q.ID = id
	f.log.Info("generated question", "id", id, "concept", concept, "difficulty", d, "type", q.Type, "new", inserted)
	return q, nil
}
