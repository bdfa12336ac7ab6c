package questions

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/mastery"
)

// MaxPerCall is the longest difficulty plan the selector produces.
const MaxPerCall = 3

// MasteryReader reads the current record for (user, concept).
type MasteryReader interface {
	Get(ctx context.Context, userID, concept string) (mastery.Record, error)
}

// Source is the question lookup the selector samples from.
type Source interface {
	Sample(ctx context.Context, concept string, d Difficulty, exclude []string) (*Question, error)
	FirstExcluding(ctx context.Context, concept string, d Difficulty, exclude []string) (*Question, error)
}

// Filler produces a question for a level the bank has nothing left for.
type Filler interface {
	Fill(ctx context.Context, concept string, d Difficulty, exclude []string) (*Question, error)
}

// Selection is the selector's answer: questions plus the mastery snapshot
// the plan was derived from.
type Selection struct {
	Questions []Ref          `json:"questions"`
	Mastery   mastery.Record `json:"mastery"`
}

// PlanFor maps mastery strength to a difficulty sequence.
func PlanFor(strength float64) []Difficulty {
	switch {
	case strength < 0.3:
		return []Difficulty{Beginner, Beginner, Intermediate}
	case strength < 0.6:
		return []Difficulty{Intermediate, Intermediate, Advanced}
	default:
		return []Difficulty{Advanced, Intermediate, Advanced}
	}
}

// Selector picks practice questions matched to a learner's mastery.
type Selector struct {
	mastery MasteryReader
	source  Source
	filler  Filler
	log     *logger.Logger
}

// SelectorOption configures a Selector.
type SelectorOption func(*Selector)

// WithFiller sets a fallback for empty levels.
func WithFiller(f Filler) SelectorOption {
	return func(s *Selector) { s.filler = f }
}

// WithSelectorLogger sets the logger.
func WithSelectorLogger(l *logger.Logger) SelectorOption {
	return func(s *Selector) { s.log = l }
}

// NewSelector creates a selector.
func NewSelector(m MasteryReader, src Source, opts ...SelectorOption) *Selector {
	s := &Selector{mastery: m, source: src, log: logger.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select returns up to min(n, MaxPerCall) distinct questions. Levels with
// no remaining question are skipped; an empty bank yields an empty list.
func (s *Selector) Select(ctx context.Context, userID, concept string, n int) (Selection, error) {
	rec, err := s.mastery.Get(ctx, userID, concept)
	if err != nil {
		return Selection{}, fmt.Errorf("read mastery: %w", err)
	}

	plan := PlanFor(rec.Strength)
	if n < len(plan) {
		plan = plan[:max(n, 0)]
	}

	sel := Selection{Questions: []Ref{}, Mastery: rec}
	chosen := make(map[string]bool, len(plan))
	var exclude []string

	for _, level := range plan {
		q := s.pick(ctx, concept, level, exclude, chosen)
		if q == nil {
			s.log.Debug("no question for level", "concept", concept, "difficulty", level)
			continue
		}
		chosen[q.ID] = true
		exclude = append(exclude, q.ID)
		sel.Questions = append(sel.Questions, q.Ref())
	}
	return sel, nil
}

func (s *Selector) pick(ctx context.Context, concept string, level Difficulty, exclude []string, chosen map[string]bool) *Question {
	q, err := s.source.Sample(ctx, concept, level, exclude)
	if err != nil {
		s.log.Warn("random sample failed", "concept", concept, "difficulty", level, "error", err)
	}
	if q != nil && !chosen[q.ID] {
		return q
	}

	q, err = s.source.FirstExcluding(ctx, concept, level, exclude)
	if err != nil {
		s.log.Warn("exclusion lookup failed", "concept", concept, "difficulty", level, "error", err)
	}
	if q != nil && !chosen[q.ID] {
		return q
	}

	if s.filler == nil {
		return nil
	}
	q, err = s.filler.Fill(ctx, concept, level, exclude)
	if err != nil {
		s.log.Warn("question fill failed", "concept", concept, "difficulty", level, "error", err)
		return nil
	}
	if q == nil || chosen[q.ID] {
		return nil
	}
	return q
}
