package questiongen

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/adaptutor/internal/llm"
	"github.com/abhisek/adaptutor/internal/questions"
)

// SourceGenerated marks bank rows written by the generator.
const SourceGenerated = "generated"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	Prompt         string               `json:"prompt"`
	Type           string               `json:"type"`
	Options        []string             `json:"options"`
	CorrectOption  string               `json:"correct_option"`
	ExpectedAnswer string               `json:"expected_answer"`
	Testcases      []questions.Testcase `json:"testcases"`
}

// Generate produces a single question for the given input.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) (*questions.Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestionGen)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response: %w", err)
	}

	q := &questions.Question{
		Concept:        input.Concept,
		Difficulty:     input.Difficulty,
		Type:           questions.Type(raw.Type),
		Prompt:         raw.Prompt,
		ExpectedAnswer: raw.ExpectedAnswer,
		Source:         SourceGenerated,
	}
	if len(raw.Options) > 0 {
		q.Options = raw.Options
		q.CorrectOption = raw.CorrectOption
	}
	if len(raw.Testcases) > 0 {
		q.Testcases = raw.Testcases
	}
	questions.Normalize(q)

	for _, v := range g.config.Validators {
		if verr := v.Validate(q, input); verr != nil {
			return nil, verr
		}
	}

	return q, nil
}
