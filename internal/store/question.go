package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var questionSelectColumns = []string{
	"id", "concept", "difficulty", "type", "prompt", "correct_option", "options",
	"expected_answer", "testcases", "language_id", "source", "created_at",
}

// questionRepo implements QuestionRepo on the questions table.
type questionRepo struct {
	store *Store
}

func (r *questionRepo) selectQuestions() *entsql.Selector {
	return r.store.builder().
		Select(questionSelectColumns...).
		From(entsql.Table(questionsTable.Name))
}

func (r *questionRepo) Find(ctx context.Context, concept, difficulty string) ([]QuestionRow, error) {
	query, args := r.selectQuestions().
		Where(entsql.And(entsql.EQ("concept", concept), entsql.EQ("difficulty", difficulty))).
		OrderBy("created_at", "id").
		Query()
	return r.queryAll(ctx, query, args)
}

func (r *questionRepo) FindByID(ctx context.Context, id string) (*QuestionRow, error) {
	query, args := r.selectQuestions().Where(entsql.EQ("id", id)).Query()
	return r.queryOne(ctx, query, args)
}

func (r *questionRepo) DistinctConcepts(ctx context.Context) ([]string, error) {
	query, args := r.store.builder().
		Select("concept").
		Distinct().
		From(entsql.Table(questionsTable.Name)).
		OrderBy("concept").
		Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("distinct concepts: %w", err)
	}
	defer rows.Close()

	concepts := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

func (r *questionRepo) Sample(ctx context.Context, concept, difficulty string, exclude []string) (*QuestionRow, error) {
	sel := r.selectQuestions().
		Where(entsql.And(
			entsql.EQ("concept", concept),
			entsql.EQ("difficulty", difficulty),
			entsql.NotIn("id", toAny(exclude)...),
		)).
		Limit(1)
	entsql.OrderByRand()(sel)

	query, args := sel.Query()
	return r.queryOne(ctx, query, args)
}

func (r *questionRepo) FirstExcluding(ctx context.Context, concept, difficulty string, exclude []string) (*QuestionRow, error) {
	query, args := r.selectQuestions().
		Where(entsql.And(
			entsql.EQ("concept", concept),
			entsql.EQ("difficulty", difficulty),
			entsql.NotIn("id", toAny(exclude)...),
		)).
		OrderBy("created_at", "id").
		Limit(1).
		Query()
	return r.queryOne(ctx, query, args)
}

func (r *questionRepo) InsertIfAbsent(ctx context.Context, q QuestionRow) (string, bool, error) {
	query, args := r.store.builder().
		Select("id").
		From(entsql.Table(questionsTable.Name)).
		Where(entsql.And(
			entsql.EQ("concept", q.Concept),
			entsql.EQ("difficulty", q.Difficulty),
			entsql.EQ("prompt", q.Prompt),
		)).
		Limit(1).
		Query()

	var existing string
	err := r.store.db.QueryRowContext(ctx, query, args...).Scan(&existing)
	switch {
	case err == nil:
		return existing, false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", false, fmt.Errorf("lookup question: %w", err)
	}

	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now().UTC()
	}
	if q.Source == "" {
		q.Source = "seed"
	}

	options, err := marshalNullable(q.Options)
	if err != nil {
		return "", false, fmt.Errorf("marshal options: %w", err)
	}
	testcases, err := marshalNullable(q.Testcases)
	if err != nil {
		return "", false, fmt.Errorf("marshal testcases: %w", err)
	}

	query, args = r.store.builder().
		Insert(questionsTable.Name).
		Columns(questionSelectColumns...).
		Values(
			q.ID, q.Concept, q.Difficulty, q.Type, q.Prompt, q.CorrectOption, options,
			q.ExpectedAnswer, testcases, q.LanguageID, q.Source, q.CreatedAt,
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return "", false, fmt.Errorf("insert question: %w", err)
	}
	return q.ID, true, nil
}

func (r *questionRepo) List(ctx context.Context, f QuestionFilter) ([]QuestionRow, error) {
	sel := r.selectQuestions()

	var preds []*entsql.Predicate
	if f.Concept != "" {
		preds = append(preds, entsql.EQ("concept", f.Concept))
	}
	if f.Difficulty != "" {
		preds = append(preds, entsql.EQ("difficulty", f.Difficulty))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy("concept", "difficulty", "created_at")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	return r.queryAll(ctx, query, args)
}

func (r *questionRepo) queryOne(ctx context.Context, query string, args []any) (*QuestionRow, error) {
	q, err := scanQuestion(r.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query question: %w", err)
	}
	return q, nil
}

func (r *questionRepo) queryAll(ctx context.Context, query string, args []any) ([]QuestionRow, error) {
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var out []QuestionRow
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func scanQuestion(s rowScanner) (*QuestionRow, error) {
	var (
		q         QuestionRow
		options   []byte
		testcases []byte
	)
	err := s.Scan(
		&q.ID, &q.Concept, &q.Difficulty, &q.Type, &q.Prompt, &q.CorrectOption, &options,
		&q.ExpectedAnswer, &testcases, &q.LanguageID, &q.Source, &q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return nil, fmt.Errorf("decode options: %w", err)
		}
	}
	if len(testcases) > 0 {
		if err := json.Unmarshal(testcases, &q.Testcases); err != nil {
			return nil, fmt.Errorf("decode testcases: %w", err)
		}
	}
	return &q, nil
}

// marshalNullable encodes v as a JSON string, or nil for empty slices.
func marshalNullable[T any](v []T) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
