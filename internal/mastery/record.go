package mastery

import "time"

const (
	// DefaultEasiness is the easiness factor of a concept never practiced.
	DefaultEasiness = 2.5

	// MinEasiness is the floor the easiness factor never drops below.
	MinEasiness = 1.3

	// MaxQuality is the best possible quality signal.
	MaxQuality = 5

	// PassQuality is the lowest quality counted as a successful review.
	PassQuality = 3

	// MaxInterval caps the review interval in days, keeping next_due
	// within the range the store can round-trip.
	MaxInterval = 36500
)

// Record is one learner's mastery of one concept.
type Record struct {
	Strength      float64    `json:"strength"`
	Easiness      float64    `json:"easiness"`
	Interval      int        `json:"interval"`
	Reviews       int        `json:"reviews"`
	LastPracticed *time.Time `json:"last_practiced"`
	NextDue       *time.Time `json:"next_due,omitempty"`
}

// DefaultRecord returns the record used when a concept has no history.
func DefaultRecord() Record {
	return Record{
		Strength: 0,
		Easiness: DefaultEasiness,
		Interval: 1,
		Reviews:  0,
	}
}

// State represents a concept's position in the mastery lifecycle.
type State string

const (
	StateNew        State = "new"
	StateLearning   State = "learning"
	StateProficient State = "proficient"
	StateMastered   State = "mastered"
	StateDue        State = "due"
)

// State classifies the record for display. A practiced record whose
// next review is in the past is due regardless of strength.
func (r Record) State(now time.Time) State {
	if r.LastPracticed == nil {
		return StateNew
	}
	if r.NextDue != nil && now.After(*r.NextDue) {
		return StateDue
	}
	switch {
	case r.Strength >= 0.6:
		return StateMastered
	case r.Strength >= 0.3:
		return StateProficient
	default:
		return StateLearning
	}
}

// Label returns the display label for a state.
func (s State) Label() string {
	switch s {
	case StateNew:
		return "New"
	case StateLearning:
		return "Learning"
	case StateProficient:
		return "Proficient"
	case StateMastered:
		return "Mastered"
	case StateDue:
		return "Review due"
	default:
		return string(s)
	}
}
