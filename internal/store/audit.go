package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/oklog/ulid/v2"
)

var auditSelectColumns = []string{
	"id", "sequence", "evaluation_id", "user_id", "concept", "question_id",
	"answer", "source_code", "score", "quality", "details", "outcome", "created_at",
}

// auditRepo implements AuditRepo on the audit_log table.
type auditRepo struct {
	store *Store
}

func (r *auditRepo) Append(ctx context.Context, e *AuditEntry) error {
	seqNum, err := r.store.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	e.Sequence = seqNum
	if e.ID == "" {
		e.ID = ulid.Make().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	var details any
	if len(e.Details) > 0 {
		details = string(e.Details)
	}

	query, args := r.store.builder().
		Insert(auditTable.Name).
		Columns(auditSelectColumns...).
		Values(
			e.ID, e.Sequence, e.EvaluationID, e.UserID, e.Concept, e.QuestionID,
			e.Answer, e.SourceCode, e.Score, e.Quality, details, e.Outcome, e.CreatedAt,
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return nil
}

func (r *auditRepo) List(ctx context.Context, f AuditFilter) ([]AuditEntry, error) {
	sel := r.store.builder().
		Select(auditSelectColumns...).
		From(entsql.Table(auditTable.Name))

	var preds []*entsql.Predicate
	if f.UserID != "" {
		preds = append(preds, entsql.EQ("user_id", f.UserID))
	}
	if f.Concept != "" {
		preds = append(preds, entsql.EQ("concept", f.Concept))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []AuditEntry
	for rows.Next() {
		var (
			e       AuditEntry
			details []byte
		)
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.EvaluationID, &e.UserID, &e.Concept, &e.QuestionID,
			&e.Answer, &e.SourceCode, &e.Score, &e.Quality, &details, &e.Outcome, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if len(details) > 0 {
			e.Details = details
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
