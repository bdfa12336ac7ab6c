package questions

import (
	"context"
	"fmt"

	"github.com/abhisek/adaptutor/internal/store"
)

// Bank is the question store seen through the domain types.
type Bank struct {
	repo store.QuestionRepo
}

// NewBank wraps a question repository.
func NewBank(repo store.QuestionRepo) *Bank {
	return &Bank{repo: repo}
}

// Find returns every question for (concept, difficulty).
func (b *Bank) Find(ctx context.Context, concept string, d Difficulty) ([]Question, error) {
	rows, err := b.repo.Find(ctx, concept, string(d))
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// FindByID returns the question, or nil if it does not exist.
func (b *Bank) FindByID(ctx context.Context, id string) (*Question, error) {
	row, err := b.repo.FindByID(ctx, id)
	if err != nil || row == nil {
		return nil, err
	}
	q := fromRow(*row)
	return &q, nil
}

// Concepts returns every concept in the bank, sorted.
func (b *Bank) Concepts(ctx context.Context) ([]string, error) {
	return b.repo.DistinctConcepts(ctx)
}

// Sample returns a random question for (concept, d) not in exclude, or nil.
func (b *Bank) Sample(ctx context.Context, concept string, d Difficulty, exclude []string) (*Question, error) {
	row, err := b.repo.Sample(ctx, concept, string(d), exclude)
	if err != nil || row == nil {
		return nil, err
	}
	q := fromRow(*row)
	return &q, nil
}

// FirstExcluding returns the oldest question for (concept, d) not in
// exclude, or nil.
func (b *Bank) FirstExcluding(ctx context.Context, concept string, d Difficulty, exclude []string) (*Question, error) {
	row, err := b.repo.FirstExcluding(ctx, concept, string(d), exclude)
	if err != nil || row == nil {
		return nil, err
	}
	q := fromRow(*row)
	return &q, nil
}

// Add normalizes, validates and stores q unless an identical prompt
// already exists for its concept and difficulty.
func (b *Bank) Add(ctx context.Context, q Question) (string, bool, error) {
	Normalize(&q)
	if verr := Validate(&q); verr != nil {
		return "", false, verr
	}
	return b.repo.InsertIfAbsent(ctx, toRow(q))
}

// List returns questions filtered by concept and difficulty (either may
// be empty).
func (b *Bank) List(ctx context.Context, concept string, d Difficulty, limit int) ([]Question, error) {
	rows, err := b.repo.List(ctx, store.QuestionFilter{Concept: concept, Difficulty: string(d), Limit: limit})
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

// ImportStats counts the outcome of an import.
type ImportStats struct {
	Inserted int
	Skipped  int
}

// Import adds every question, stopping at the first invalid one.
func (b *Bank) Import(ctx context.Context, qs []Question) (ImportStats, error) {
	var stats ImportStats
	for i, q := range qs {
		_, inserted, err := b.Add(ctx, q)
		if err != nil {
			return stats, fmt.Errorf("question %d (%s): %w", i+1, q.Concept, err)
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Skipped++
		}
	}
	return stats, nil
}

func fromRows(rows []store.QuestionRow) []Question {
	out := make([]Question, len(rows))
	for i, r := range rows {
		out[i] = fromRow(r)
	}
	return out
}

func fromRow(r store.QuestionRow) Question {
	q := Question{
		ID:             r.ID,
		Concept:        r.Concept,
		Difficulty:     Difficulty(r.Difficulty),
		Type:           Type(r.Type),
		Prompt:         r.Prompt,
		Options:        r.Options,
		CorrectOption:  r.CorrectOption,
		ExpectedAnswer: r.ExpectedAnswer,
		LanguageID:     r.LanguageID,
		Source:         r.Source,
	}
	for _, tc := range r.Testcases {
		q.Testcases = append(q.Testcases, Testcase{Stdin: tc.Stdin, Expected: tc.Expected})
	}
	return q
}

func toRow(q Question) store.QuestionRow {
	r := store.QuestionRow{
		ID:             q.ID,
		Concept:        q.Concept,
		Difficulty:     string(q.Difficulty),
		Type:           string(q.Type),
		Prompt:         q.Prompt,
		Options:        q.Options,
		CorrectOption:  q.CorrectOption,
		ExpectedAnswer: q.ExpectedAnswer,
		LanguageID:     q.LanguageID,
		Source:         q.Source,
	}
	for _, tc := range q.Testcases {
		r.Testcases = append(r.Testcases, store.TestcaseRow{Stdin: tc.Stdin, Expected: tc.Expected})
	}
	return r
}
