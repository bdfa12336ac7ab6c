package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// learnerRepo implements LearnerRepo on the learners table.
type learnerRepo struct {
	store *Store
}

func (r *learnerRepo) Upsert(ctx context.Context, row LearnerRow) error {
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	query, args := r.store.builder().
		Insert(learnersTable.Name).
		Columns("id", "name", "email", "created_at", "updated_at").
		Values(row.ID, row.Name, row.Email, row.CreatedAt, now).
		OnConflict(
			entsql.ConflictColumns("id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("name")
				u.SetExcluded("email")
				u.SetExcluded("updated_at")
			}),
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert learner: %w", err)
	}
	return nil
}

func (r *learnerRepo) Ensure(ctx context.Context, id string) error {
	now := time.Now().UTC()
	query, args := r.store.builder().
		Insert(learnersTable.Name).
		Columns("id", "name", "email", "created_at", "updated_at").
		Values(id, "", "", now, now).
		OnConflict(entsql.ConflictColumns("id"), entsql.DoNothing()).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("ensure learner: %w", err)
	}
	return nil
}

func (r *learnerRepo) Get(ctx context.Context, id string) (*LearnerRow, error) {
	query, args := r.store.builder().
		Select("id", "name", "email", "created_at", "updated_at").
		From(entsql.Table(learnersTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var l LearnerRow
	err := r.store.db.QueryRowContext(ctx, query, args...).
		Scan(&l.ID, &l.Name, &l.Email, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get learner: %w", err)
	}
	return &l, nil
}
