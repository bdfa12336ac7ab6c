package questiongen

import (
	"fmt"

	"github.com/abhisek/adaptutor/internal/questions"
)

// Validator checks a generated question. Implementations are stateless
// and safe for concurrent use.
type Validator interface {
	// Name identifies the validator in errors and logs.
	Name() string

	// Validate returns nil if q passes. input is the request q was
	// generated for.
	Validate(q *questions.Question, input Input) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string
	Message   string
	Retryable bool // regeneration is likely to fix it
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}
