// Package questiongen writes new bank questions with an LLM and vets
// them through a validator chain before they can be stored.
package questiongen

import (
	"context"

	"github.com/abhisek/adaptutor/internal/questions"
)

// Input is everything the generator needs for one question.
type Input struct {
	Concept    string
	Difficulty questions.Difficulty
	// Type is the answer modality to generate. Empty lets the model pick
	// between mcq and short_answer.
	Type questions.Type
	// PriorQuestions holds prompts already in the bank for this concept,
	// listed in the prompt so the model avoids repeats.
	PriorQuestions []string
}

// Generator produces bank questions.
type Generator interface {
	// Generate returns a validated question. All configured validators
	// run before it returns.
	Generate(ctx context.Context, input Input) (*questions.Question, error)
}
