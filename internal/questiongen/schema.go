package questiongen

import "github.com/abhisek/adaptutor/internal/llm"

// QuestionSchema is the structured output the model must return. Every
// property is required so OpenAI strict mode accepts it; unused fields
// come back empty.
var QuestionSchema = &llm.Schema{
	Name:        "dsa-question",
	Description: "A single data structures and algorithms practice question with its answer key",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "The question shown to the learner",
			},
			"type": map[string]any{
				"type":        "string",
				"enum":        []any{"mcq", "short_answer", "essay", "code"},
				"description": "How the learner answers",
			},
			"options": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "2 to 6 distinct options for mcq. Empty for other types.",
			},
			"correct_option": map[string]any{
				"type":        "string",
				"description": "For mcq: the exact text of the correct option. Empty otherwise.",
			},
			"expected_answer": map[string]any{
				"type":        "string",
				"description": "For short_answer and essay: a model answer. Empty otherwise.",
			},
			"testcases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stdin":    map[string]any{"type": "string"},
						"expected": map[string]any{"type": "string"},
					},
					"required":             []any{"stdin", "expected"},
					"additionalProperties": false,
				},
				"description": "For code: stdin and exact expected stdout pairs. Empty otherwise.",
			},
		},
		"required":             []any{"prompt", "type", "options", "correct_option", "expected_answer", "testcases"},
		"additionalProperties": false,
	},
}
