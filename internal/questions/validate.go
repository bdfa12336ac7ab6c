package questions

import (
	"fmt"
	"strings"
)

// ValidationError describes why a question failed structural validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid question: %s: %s", e.Field, e.Message)
}

// Normalize trims text fields and fills defaults in place.
func Normalize(q *Question) {
	q.Concept = strings.TrimSpace(q.Concept)
	q.Prompt = strings.TrimSpace(q.Prompt)
	q.Difficulty = Difficulty(strings.ToLower(strings.TrimSpace(string(q.Difficulty))))
	q.Type = Type(strings.ToLower(strings.TrimSpace(string(q.Type))))
	q.CorrectOption = strings.TrimSpace(q.CorrectOption)
	if q.Type == TypeCode && q.LanguageID == 0 {
		q.LanguageID = DefaultLanguageID
	}
}

// Validate checks that q is well formed for its type.
func Validate(q *Question) *ValidationError {
	if q.Concept == "" {
		return &ValidationError{Field: "concept", Message: "is empty"}
	}
	if q.Prompt == "" {
		return &ValidationError{Field: "prompt", Message: "is empty"}
	}
	if _, err := ParseDifficulty(string(q.Difficulty)); err != nil {
		return &ValidationError{Field: "difficulty", Message: err.Error()}
	}
	if !q.Type.Known() {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown type %q", q.Type)}
	}

	switch q.Type {
	case TypeMCQ:
		if q.CorrectOption == "" {
			return &ValidationError{Field: "correct_option", Message: "is required for mcq"}
		}
		if len(q.Options) > 0 && !containsFold(q.Options, q.CorrectOption) {
			return &ValidationError{Field: "options", Message: "do not contain correct_option"}
		}
	case TypeCode:
		if q.LanguageID <= 0 {
			return &ValidationError{Field: "language_id", Message: "must be positive"}
		}
		for i, tc := range q.Testcases {
			if strings.TrimSpace(tc.Expected) == "" {
				return &ValidationError{Field: fmt.Sprintf("testcases[%d].expected", i), Message: "is empty"}
			}
		}
	}
	return nil
}

func containsFold(options []string, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, o := range options {
		if strings.ToLower(strings.TrimSpace(o)) == want {
			return true
		}
	}
	return false
}
