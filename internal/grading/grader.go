// Package grading talks to the rubric grader and turns its free-text
// replies into scores. When no grader is configured, or its reply cannot
// be used, callers fall back to the lexical similarity measure here.
package grading

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/adaptutor/internal/llm"
)

// Default completion limits per prompt kind.
const (
	DefaultShortAnswerMaxTokens = 300
	DefaultCodeMaxTokens        = 400
)

// ErrEmptyResponse is returned when the grader replies with no text.
var ErrEmptyResponse = errors.New("grader returned an empty response")

// Prompt is one grading request.
type Prompt struct {
	// Purpose labels the call for event logging.
	Purpose   string
	Text      string
	MaxTokens int
}

// Grader returns the raw completion for a prompt. It makes no promise
// about structure beyond "ideally JSON".
type Grader interface {
	Grade(ctx context.Context, p Prompt) (string, error)
}

// LLMGrader is a Grader backed by an llm.Provider.
type LLMGrader struct {
	provider    llm.Provider
	temperature float64
}

// NewLLMGrader creates a grader over p. Grading runs at the given
// temperature; zero keeps replies deterministic.
func NewLLMGrader(p llm.Provider, temperature float64) *LLMGrader {
	return &LLMGrader{provider: p, temperature: temperature}
}

func (g *LLMGrader) Grade(ctx context.Context, p Prompt) (string, error) {
	if p.Purpose != "" {
		ctx = llm.WithPurpose(ctx, p.Purpose)
	}

	resp, err := g.provider.Generate(ctx, llm.Request{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: p.Text}},
		MaxTokens:   p.MaxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("grade: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ModelID reports the backing model.
func (g *LLMGrader) ModelID() string {
	return g.provider.ModelID()
}
