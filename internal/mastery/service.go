package mastery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/adaptutor/internal/logger"
	"github.com/abhisek/adaptutor/internal/store"
)

// DefaultMaxAttempts bounds the read-modify-write retries in Apply.
const DefaultMaxAttempts = 5

// ErrConflict is returned when Apply loses the version race on every attempt.
var ErrConflict = errors.New("mastery: concurrent update conflict")

// Result is the outcome of applying one quality signal.
type Result struct {
	Previous Record    `json:"previous"`
	Record   Record    `json:"record"`
	NextDue  time.Time `json:"next_due"`
}

// Service owns every mastery write. Other components read through Get.
type Service struct {
	repo        store.MasteryRepo
	learners    store.LearnerRepo
	locker      Locker
	log         *logger.Logger
	now         func() time.Time
	maxAttempts int
}

// Option configures a Service.
type Option func(*Service)

// WithLocker replaces the default in-process locker.
func WithLocker(l Locker) Option {
	return func(s *Service) { s.locker = l }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a mastery service. learners may be nil.
func NewService(repo store.MasteryRepo, learners store.LearnerRepo, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		learners:    learners,
		locker:      NewKeyedLocker(),
		log:         logger.Nop(),
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Get returns the learner's record for concept, or the defaults.
func (s *Service) Get(ctx context.Context, userID, concept string) (Record, error) {
	row, err := s.repo.Get(ctx, userID, concept)
	if err != nil {
		return Record{}, fmt.Errorf("get mastery: %w", err)
	}
	if row == nil {
		return DefaultRecord(), nil
	}
	return recordFromRow(row), nil
}

// Apply runs the scheduler for (user, concept) and persists the result.
// The key is locked for the duration and the write is conditional on the
// version read, so concurrent evaluations never lose an update.
func (s *Service) Apply(ctx context.Context, userID, concept string, quality int) (Result, error) {
	unlock, err := s.locker.Lock(ctx, LockKey(userID, concept))
	if err != nil {
		return Result{}, fmt.Errorf("lock mastery: %w", err)
	}
	defer unlock()

	if s.learners != nil {
		if err := s.learners.Ensure(ctx, userID); err != nil {
			s.log.Warn("ensure learner failed", "user_id", userID, "error", err)
		}
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		row, err := s.repo.Get(ctx, userID, concept)
		if err != nil {
			return Result{}, fmt.Errorf("read mastery: %w", err)
		}

		prev := DefaultRecord()
		var version int64
		if row != nil {
			prev = recordFromRow(row)
			version = row.Version
		}

		next, due := Update(prev, quality, s.now())
		ok, err := s.repo.CompareAndSwap(ctx, rowFromRecord(userID, concept, next), version)
		if err != nil {
			return Result{}, fmt.Errorf("write mastery: %w", err)
		}
		if ok {
			return Result{Previous: prev, Record: next, NextDue: due}, nil
		}
		s.log.Debug("mastery version conflict", "user_id", userID, "concept", concept, "attempt", attempt)
	}
	return Result{}, ErrConflict
}

// Learner loads the aggregate for id, or nil if the learner is unknown.
func (s *Service) Learner(ctx context.Context, id string) (*Learner, error) {
	if s.learners == nil {
		return nil, errors.New("learner repository not configured")
	}
	row, err := s.learners.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	l := NewLearner(row.ID)
	l.Name = row.Name
	l.Email = row.Email
	l.CreatedAt = row.CreatedAt

	rows, err := s.repo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list mastery: %w", err)
	}
	for i := range rows {
		l.Put(rows[i].Concept, recordFromRow(&rows[i]))
	}
	return l, nil
}

// UpsertLearner sets profile fields without touching mastery.
func (s *Service) UpsertLearner(ctx context.Context, id, name, email string) (*Learner, error) {
	if s.learners == nil {
		return nil, errors.New("learner repository not configured")
	}
	if err := s.learners.Upsert(ctx, store.LearnerRow{ID: id, Name: name, Email: email}); err != nil {
		return nil, err
	}
	return s.Learner(ctx, id)
}

func recordFromRow(row *store.MasteryRow) Record {
	return Record{
		Strength:      row.Strength,
		Easiness:      row.Easiness,
		Interval:      row.IntervalDays,
		Reviews:       row.Reviews,
		LastPracticed: row.LastPracticed,
		NextDue:       row.NextDue,
	}
}

func rowFromRecord(userID, concept string, r Record) store.MasteryRow {
	return store.MasteryRow{
		UserID:        userID,
		Concept:       concept,
		Strength:      r.Strength,
		Easiness:      r.Easiness,
		IntervalDays:  r.Interval,
		Reviews:       r.Reviews,
		LastPracticed: r.LastPracticed,
		NextDue:       r.NextDue,
	}
}
