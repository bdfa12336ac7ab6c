package mastery

import (
	"sort"
	"time"
)

// Learner is the user-owned aggregate holding profile fields and a typed
// concept-to-record mapping.
type Learner struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	CreatedAt time.Time         `json:"created_at"`
	Mastery   map[string]Record `json:"mastery"`
}

// NewLearner creates an empty learner.
func NewLearner(id string) *Learner {
	return &Learner{ID: id, Mastery: make(map[string]Record)}
}

// Record returns the stored record for concept, or the defaults.
func (l *Learner) Record(concept string) Record {
	if rec, ok := l.Mastery[concept]; ok {
		return rec
	}
	return DefaultRecord()
}

// Put upserts the record for concept.
func (l *Learner) Put(concept string, rec Record) {
	if l.Mastery == nil {
		l.Mastery = make(map[string]Record)
	}
	l.Mastery[concept] = rec
}

// Concepts returns the concepts with a stored record, sorted.
func (l *Learner) Concepts() []string {
	out := make([]string, 0, len(l.Mastery))
	for c := range l.Mastery {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
