package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var masterySelectColumns = []string{
	"user_id", "concept", "strength", "easiness", "interval_days", "reviews",
	"last_practiced", "next_due", "version", "updated_at",
}

// masteryRepo implements MasteryRepo on the mastery table.
type masteryRepo struct {
	store *Store
}

func (r *masteryRepo) Get(ctx context.Context, userID, concept string) (*MasteryRow, error) {
	query, args := r.store.builder().
		Select(masterySelectColumns...).
		From(entsql.Table(masteryTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("concept", concept))).
		Query()

	row, err := scanMastery(r.store.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get mastery: %w", err)
	}
	return row, nil
}

func (r *masteryRepo) Put(ctx context.Context, row MasteryRow) error {
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}
	query, args := r.insert(row, 1).
		OnConflict(
			entsql.ConflictColumns("user_id", "concept"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				for _, c := range []string{"strength", "easiness", "interval_days", "reviews", "last_practiced", "next_due", "updated_at"} {
					u.SetExcluded(c)
				}
				u.Add("version", 1)
			}),
		).
		Query()

	if _, err := r.store.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put mastery: %w", err)
	}
	return nil
}

func (r *masteryRepo) CompareAndSwap(ctx context.Context, row MasteryRow, expected int64) (bool, error) {
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = time.Now().UTC()
	}

	var (
		query string
		args  []any
	)
	if expected == 0 {
		query, args = r.insert(row, 1).
			OnConflict(entsql.ConflictColumns("user_id", "concept"), entsql.DoNothing()).
			Query()
	} else {
		query, args = r.store.builder().
			Update(masteryTable.Name).
			Set("strength", row.Strength).
			Set("easiness", row.Easiness).
			Set("interval_days", row.IntervalDays).
			Set("reviews", row.Reviews).
			Set("last_practiced", nullableTime(row.LastPracticed)).
			Set("next_due", nullableTime(row.NextDue)).
			Set("updated_at", row.UpdatedAt).
			Set("version", expected+1).
			Where(entsql.And(
				entsql.EQ("user_id", row.UserID),
				entsql.EQ("concept", row.Concept),
				entsql.EQ("version", expected),
			)).
			Query()
	}

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("compare-and-swap mastery: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *masteryRepo) ListByUser(ctx context.Context, userID string) ([]MasteryRow, error) {
	query, args := r.store.builder().
		Select(masterySelectColumns...).
		From(entsql.Table(masteryTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		OrderBy("concept").
		Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	defer rows.Close()

	var out []MasteryRow
	for rows.Next() {
		m, err := scanMastery(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mastery: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *masteryRepo) insert(row MasteryRow, version int64) *entsql.InsertBuilder {
	return r.store.builder().
		Insert(masteryTable.Name).
		Columns(masterySelectColumns...).
		Values(
			row.UserID, row.Concept, row.Strength, row.Easiness, row.IntervalDays, row.Reviews,
			nullableTime(row.LastPracticed), nullableTime(row.NextDue), version, row.UpdatedAt,
		)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMastery(s rowScanner) (*MasteryRow, error) {
	var (
		m             MasteryRow
		lastPracticed sql.NullTime
		nextDue       sql.NullTime
	)
	err := s.Scan(
		&m.UserID, &m.Concept, &m.Strength, &m.Easiness, &m.IntervalDays, &m.Reviews,
		&lastPracticed, &nextDue, &m.Version, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.LastPracticed = timePtr(lastPracticed)
	m.NextDue = timePtr(nextDue)
	return &m, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
