package questions

import (
	"fmt"
	"strings"
)

// DefaultLanguageID is the judge language used when neither the question
// nor the submission names one (Python 3 on Judge0).
const DefaultLanguageID = 71

// Difficulty buckets questions for selection.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// Difficulties lists every level, easiest first.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty normalizes s into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

// Type is the answer modality of a question.
type Type string

const (
	TypeMCQ         Type = "mcq"
	TypeShortAnswer Type = "short_answer"
	TypeEssay       Type = "essay"
	TypeCode        Type = "code"
)

// Types lists every known question type.
var Types = []Type{TypeMCQ, TypeShortAnswer, TypeEssay, TypeCode}

// Known reports whether t is one of Types.
func (t Type) Known() bool {
	for _, k := range Types {
		if t == k {
			return true
		}
	}
	return false
}

// Testcase is one stdin/expected-stdout pair for a code question.
type Testcase struct {
	Stdin    string `json:"stdin" yaml:"stdin"`
	Expected string `json:"expected" yaml:"expected"`
}

// Question is a question bank entry including its answer key.
type Question struct {
	ID             string     `json:"id" yaml:"id,omitempty"`
	Concept        string     `json:"concept" yaml:"concept"`
	Difficulty     Difficulty `json:"difficulty" yaml:"difficulty"`
	Type           Type       `json:"type" yaml:"type"`
	Prompt         string     `json:"prompt" yaml:"prompt"`
	Options        []string   `json:"options,omitempty" yaml:"options,omitempty"`
	CorrectOption  string     `json:"correct_option,omitempty" yaml:"correct_option,omitempty"`
	ExpectedAnswer string     `json:"expected_answer,omitempty" yaml:"expected_answer,omitempty"`
	Testcases      []Testcase `json:"testcases,omitempty" yaml:"testcases,omitempty"`
	LanguageID     int        `json:"language_id,omitempty" yaml:"language_id,omitempty"`
	Source         string     `json:"source,omitempty" yaml:"source,omitempty"`
}

// Ref is what a learner sees of a question: no answer key.
type Ref struct {
	ID         string     `json:"id"`
	Concept    string     `json:"concept"`
	Difficulty Difficulty `json:"difficulty"`
	Type       Type       `json:"type"`
	Prompt     string     `json:"prompt"`
	Options    []string   `json:"options,omitempty"`
	LanguageID int        `json:"language_id,omitempty"`
}

// Ref strips the answer key.
func (q *Question) Ref() Ref {
	return Ref{
		ID:         q.ID,
		Concept:    q.Concept,
		Difficulty: q.Difficulty,
		Type:       q.Type,
		Prompt:     q.Prompt,
		Options:    q.Options,
		LanguageID: q.LanguageID,
	}
}
