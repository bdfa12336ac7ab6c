package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

// questionSchema mirrors the shape questiongen asks for: nested testcases,
// an enum and a nullable field.
func questionSchema(name string) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"type":   map[string]any{"type": "string", "enum": []string{"mcq", "short_answer", "essay", "code"}},
				"prompt": map[string]any{"type": "string", "minLength": 1},
				"correct_option": map[string]any{
					"type": []any{"string", "null"},
				},
				"testcases": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": map[string]any{"stdin": map[string]any{"type": "string"}, "expected": map[string]any{"type": "string"}},
						"required":   []string{"expected"},
					},
				},
			},
			"required": []string{"type", "prompt"},
		},
	}
}

func TestValidateJSON_QuestionShapes(t *testing.T) {
	schema := questionSchema("validate-question")
	tests := []struct {
		name string
		raw  string
		ok   bool
	}{
		{"mcq", `{"type":"mcq","prompt":"Which structure backs BFS?","correct_option":"queue"}`, true},
		{"null correct option", `{"type":"essay","prompt":"Compare heaps and BSTs.","correct_option":null}`, true},
		{"code with testcases", `{"type":"code","prompt":"Print fib(n).","testcases":[{"stdin":"5","expected":"5"}]}`, true},
		{"testcase missing expected", `{"type":"code","prompt":"Print fib(n).","testcases":[{"stdin":"5"}]}`, false},
		{"unknown type", `{"type":"matching","prompt":"Pair these."}`, false},
		{"empty prompt", `{"type":"mcq","prompt":""}`, false},
		{"missing prompt", `{"type":"mcq"}`, false},
		{"not JSON", `Here is a question about stacks`, false},
		{"empty", ``, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(schema, []byte(tt.raw))
			if tt.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tt.ok {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
				}
			}
		})
	}
}

func TestValidateJSON_NilSchemaAcceptsAnything(t *testing.T) {
	if err := ValidateJSON(nil, []byte(`not json at all`)); err != nil {
		t.Fatalf("nil schema: %v", err)
	}
}

func TestValidateJSON_CachesBySchemaName(t *testing.T) {
	first := &Schema{Name: "validate-cache", Definition: map[string]any{"type": "object", "required": []string{"a"}}}
	if err := ValidateJSON(first, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("first: %v", err)
	}
	// A different definition under the same name reuses the compiled one.
	second := &Schema{Name: "validate-cache", Definition: map[string]any{"type": "object", "required": []string{"b"}}}
	if err := ValidateJSON(second, []byte(`{"a":1}`)); err != nil {
		t.Fatalf("expected cached schema to be used, got %v", err)
	}
}

func TestFinish(t *testing.T) {
	schema := questionSchema("finish-question")
	valid := json.RawMessage(`{"type":"mcq","prompt":"Which structure backs BFS?"}`)

	t.Run("unstructured passes through", func(t *testing.T) {
		resp := &Response{Content: json.RawMessage(`free text`), StopReason: StopMaxTokens}
		got, err := finish(Request{}, resp)
		if err != nil || got != resp {
			t.Fatalf("got %v, %v", got, err)
		}
	})

	t.Run("valid structured reply", func(t *testing.T) {
		got, err := finish(Request{Schema: schema}, &Response{Content: valid, StopReason: StopEnd})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got.Content) != string(valid) {
			t.Fatalf("content = %s", got.Content)
		}
	})

	t.Run("truncation wins over schema failure", func(t *testing.T) {
		cut := json.RawMessage(`{"type":"mcq","pro`)
		_, err := finish(Request{Schema: schema}, &Response{Content: cut, StopReason: StopMaxTokens})
		var trunc *ErrMaxTokensExceeded
		if !errors.As(err, &trunc) {
			t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
		}
		if string(trunc.Content) != string(cut) {
			t.Fatalf("content = %s", trunc.Content)
		}
	})

	t.Run("schema mismatch", func(t *testing.T) {
		_, err := finish(Request{Schema: schema}, &Response{Content: json.RawMessage(`{"type":"mcq"}`), StopReason: StopEnd})
		var inv *ErrInvalidResponse
		if !errors.As(err, &inv) {
			t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
		}
	})
}
