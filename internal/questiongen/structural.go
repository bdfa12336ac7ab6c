package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/adaptutor/internal/questions"
)

const (
	maxPromptLen   = 2000
	maxOptions     = 6
	minOptions     = 2
	minTestcases   = 1
	maxExpectedLen = 2000
)

// StructuralValidator applies the bank's own rules plus length limits.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *questions.Question, _ Input) *ValidationError {
	if verr := questions.Validate(q); verr != nil {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("%s %s", verr.Field, verr.Message),
			Retryable: true,
		}
	}
	if len(q.Prompt) > maxPromptLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("prompt exceeds %d characters", maxPromptLen),
			Retryable: true,
		}
	}
	if len(q.ExpectedAnswer) > maxExpectedLen {
		return &ValidationError{
			Validator: v.Name(),
			Message:   fmt.Sprintf("expected_answer exceeds %d characters", maxExpectedLen),
			Retryable: true,
		}
	}
	return nil
}

// TypeValidator enforces what each type needs to be gradable: options for
// mcq, a model answer for free text, testcases for code. It also rejects
// a type other than the one requested.
type TypeValidator struct{}

func (v *TypeValidator) Name() string { return "type" }

func (v *TypeValidator) Validate(q *questions.Question, input Input) *ValidationError {
	fail := func(format string, args ...any) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf(format, args...), Retryable: true}
	}

	if input.Type != "" && q.Type != input.Type {
		return fail("type %q does not match requested %q", q.Type, input.Type)
	}

	switch q.Type {
	case questions.TypeMCQ:
		if len(q.Options) < minOptions || len(q.Options) > maxOptions {
			return fail("mcq needs %d to %d options, got %d", minOptions, maxOptions, len(q.Options))
		}
		seen := make(map[string]bool, len(q.Options))
		for _, o := range q.Options {
			key := strings.ToLower(strings.TrimSpace(o))
			if key == "" {
				return fail("mcq option is empty")
			}
			if seen[key] {
				return fail("duplicate option %q", o)
			}
			seen[key] = true
		}
	case questions.TypeShortAnswer, questions.TypeEssay:
		if strings.TrimSpace(q.ExpectedAnswer) == "" {
			return fail("%s needs an expected_answer", q.Type)
		}
	case questions.TypeCode:
		if len(q.Testcases) < minTestcases {
			return fail("code needs at least %d testcase", minTestcases)
		}
	}
	return nil
}

// DedupValidator rejects a prompt that repeats one listed in the input.
type DedupValidator struct{}

func (v *DedupValidator) Name() string { return "dedup" }

func (v *DedupValidator) Validate(q *questions.Question, input Input) *ValidationError {
	want := normalizePrompt(q.Prompt)
	for _, p := range input.PriorQuestions {
		if normalizePrompt(p) == want {
			return &ValidationError{
				Validator: v.Name(),
				Message:   "prompt repeats an existing question",
				Retryable: true,
			}
		}
	}
	return nil
}

func normalizePrompt(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
