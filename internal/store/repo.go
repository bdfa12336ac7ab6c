package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// MasteryRow is the persisted form of one (user, concept) mastery record.
// Version increases by one on every successful write.
type MasteryRow struct {
	UserID        string
	Concept       string
	Strength      float64
	Easiness      float64
	IntervalDays  int
	Reviews       int
	LastPracticed *time.Time
	NextDue       *time.Time
	Version       int64
	UpdatedAt     time.Time
}

// MasteryRepo stores mastery records keyed by (user, concept).
type MasteryRepo interface {
	// Get returns the row for (user, concept), or nil if none exists.
	Get(ctx context.Context, userID, concept string) (*MasteryRow, error)

	// Put upserts the row unconditionally (last write wins).
	Put(ctx context.Context, row MasteryRow) error

	// CompareAndSwap writes row only if the stored version still equals
	// expected. expected == 0 means "no row yet". Returns false on conflict.
	CompareAndSwap(ctx context.Context, row MasteryRow, expected int64) (bool, error)

	// ListByUser returns every mastery row owned by the user.
	ListByUser(ctx context.Context, userID string) ([]MasteryRow, error)
}

// LearnerRow is a learner's profile.
type LearnerRow struct {
	ID        string
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LearnerRepo manages learner profiles.
type LearnerRepo interface {
	// Upsert creates the learner or updates name and email.
	Upsert(ctx context.Context, row LearnerRow) error

	// Get returns the learner, or nil if none exists.
	Get(ctx context.Context, id string) (*LearnerRow, error)

	// Ensure creates an empty profile if the learner does not exist yet.
	Ensure(ctx context.Context, id string) error
}

// TestcaseRow is one stored code testcase.
type TestcaseRow struct {
	Stdin    string `json:"stdin"`
	Expected string `json:"expected"`
}

// QuestionRow is a question bank entry.
type QuestionRow struct {
	ID             string
	Concept        string
	Difficulty     string
	Type           string
	Prompt         string
	CorrectOption  string
	Options        []string
	ExpectedAnswer string
	Testcases      []TestcaseRow
	LanguageID     int
	Source         string
	CreatedAt      time.Time
}

// QuestionFilter narrows question listings. Empty fields match anything.
type QuestionFilter struct {
	Concept    string
	Difficulty string
	Limit      int
}

// QuestionRepo is read-mostly access to the question bank.
type QuestionRepo interface {
	// Find returns every question for (concept, difficulty).
	Find(ctx context.Context, concept, difficulty string) ([]QuestionRow, error)

	// FindByID returns the question, or nil if none exists.
	FindByID(ctx context.Context, id string) (*QuestionRow, error)

	// DistinctConcepts returns every concept in the bank, sorted.
	DistinctConcepts(ctx context.Context) ([]string, error)

	// Sample returns one uniformly random question for (concept, difficulty)
	// whose id is not in exclude, or nil if none match.
	Sample(ctx context.Context, concept, difficulty string, exclude []string) (*QuestionRow, error)

	// FirstExcluding deterministically returns the oldest question for
	// (concept, difficulty) whose id is not in exclude, or nil.
	FirstExcluding(ctx context.Context, concept, difficulty string, exclude []string) (*QuestionRow, error)

	// InsertIfAbsent stores q unless a question with the same concept,
	// difficulty and prompt exists. Returns the stored id and whether a
	// new row was written.
	InsertIfAbsent(ctx context.Context, q QuestionRow) (string, bool, error)

	// List returns questions matching the filter ordered by concept.
	List(ctx context.Context, f QuestionFilter) ([]QuestionRow, error)
}

// AuditEntry is one append-only evaluation record.
type AuditEntry struct {
	ID           string
	Sequence     int64
	EvaluationID string
	UserID       string
	Concept      string
	QuestionID   string
	Answer       string
	SourceCode   string
	Score        float64
	Quality      int
	Details      json.RawMessage
	Outcome      string
	CreatedAt    time.Time
}

// AuditFilter narrows audit listings. Empty fields match anything.
type AuditFilter struct {
	UserID  string
	Concept string
	Limit   int
}

// AuditRepo is the append-only evaluation log.
type AuditRepo interface {
	// Append assigns ID, Sequence and CreatedAt (when zero) and stores the entry.
	Append(ctx context.Context, e *AuditEntry) error

	// List returns entries newest first.
	List(ctx context.Context, f AuditFilter) ([]AuditEntry, error)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request event.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage for one purpose or model.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)

	// GetLLMEvent returns one event, or nil if none exists.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)

	// LLMUsageByPurpose aggregates usage grouped by purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates usage grouped by model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
