package grading

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/adaptutor/internal/llm"
)

func TestLLMGrader_Grade(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`{"score":1,"quality":5}`)})
	g := NewLLMGrader(mock, 0)

	p := ShortAnswerPrompt("FIFO", "first in first out", 0)
	raw, err := g.Grade(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != `{"score":1,"quality":5}` {
		t.Fatalf("unexpected raw reply %q", raw)
	}

	req := mock.Calls[0]
	if req.MaxTokens != DefaultShortAnswerMaxTokens {
		t.Fatalf("expected max tokens %d, got %d", DefaultShortAnswerMaxTokens, req.MaxTokens)
	}
	if req.Temperature != 0 {
		t.Fatalf("expected temperature 0, got %v", req.Temperature)
	}
	if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, `"""first in first out"""`) {
		t.Fatalf("answer missing from prompt: %+v", req.Messages)
	}
	if g.ModelID() != "mock" {
		t.Fatalf("unexpected model %q", g.ModelID())
	}
}

func TestLLMGrader_Errors(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("down")}},
		llm.MockResponse{Content: json.RawMessage(``)},
	)
	g := NewLLMGrader(mock, 0)

	_, err := g.Grade(context.Background(), Prompt{Text: "x"})
	var unavail *llm.ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected wrapped ErrProviderUnavailable, got %v", err)
	}

	_, err = g.Grade(context.Background(), Prompt{Text: "x"})
	if !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCodePrompt(t *testing.T) {
	tcs := []map[string]string{{"stdin": "3", "expected": "6"}}
	results := []map[string]any{{"stdout": "6", "passed": true}}
	p := CodePrompt("print(int(input())*2)", tcs, results, 0)

	if p.Purpose != llm.PurposeGradeCode {
		t.Fatalf("unexpected purpose %q", p.Purpose)
	}
	if p.MaxTokens != DefaultCodeMaxTokens {
		t.Fatalf("unexpected max tokens %d", p.MaxTokens)
	}
	for _, want := range []string{"print(int(input())*2)", `"expected":"6"`, `"passed":true`, `"suggestion"`} {
		if !strings.Contains(p.Text, want) {
			t.Errorf("code prompt missing %q", want)
		}
	}
}
