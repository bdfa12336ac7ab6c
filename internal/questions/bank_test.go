package questions

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/abhisek/adaptutor/internal/store"
)

func openTestBank(t *testing.T) *Bank {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "bank.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewBank(s.QuestionRepo())
}

func TestSeedQuestionsAreValid(t *testing.T) {
	qs, err := SeedQuestions()
	if err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	if len(qs) < 10 {
		t.Fatalf("seed bank too small: %d", len(qs))
	}
	types := map[Type]bool{}
	for i := range qs {
		Normalize(&qs[i])
		if err := Validate(&qs[i]); err != nil {
			t.Errorf("seed question %d (%s): %v", i, qs[i].Prompt, err)
		}
		types[qs[i].Type] = true
	}
	for _, typ := range Types {
		if !types[typ] {
			t.Errorf("seed bank has no %s question", typ)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	b := openTestBank(t)
	ctx := context.Background()

	first, err := Seed(ctx, b)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if first.Inserted == 0 || first.Skipped != 0 {
		t.Fatalf("first seed: %+v", first)
	}

	second, err := Seed(ctx, b)
	if err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if second.Inserted != 0 || second.Skipped != first.Inserted {
		t.Fatalf("second seed: %+v", second)
	}

	concepts, err := b.Concepts(ctx)
	if err != nil {
		t.Fatalf("concepts: %v", err)
	}
	if len(concepts) == 0 || concepts[0] != "bfs" {
		t.Errorf("concepts = %v", concepts)
	}
}

func TestBankRoundTripsCodeQuestion(t *testing.T) {
	b := openTestBank(t)
	ctx := context.Background()

	id, inserted, err := b.Add(ctx, Question{
		Concept: "fibonacci", Difficulty: Beginner, Type: TypeCode, Prompt: "fib",
		Testcases: []Testcase{{Stdin: "5\n", Expected: "5"}},
	})
	if err != nil || !inserted {
		t.Fatalf("add: %v inserted=%v", err, inserted)
	}

	got, err := b.FindByID(ctx, id)
	if err != nil || got == nil {
		t.Fatalf("find: %+v, %v", got, err)
	}
	if got.LanguageID != DefaultLanguageID || len(got.Testcases) != 1 || got.Testcases[0].Stdin != "5\n" {
		t.Fatalf("unexpected question: %+v", got)
	}

	missing, err := b.FindByID(ctx, "nope")
	if err != nil || missing != nil {
		t.Fatalf("missing: %+v, %v", missing, err)
	}
}

func TestBankRejectsInvalid(t *testing.T) {
	b := openTestBank(t)
	_, _, err := b.Add(context.Background(), Question{Concept: "x", Difficulty: "hard", Type: TypeEssay, Prompt: "p"})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "bank.yaml")
	os.WriteFile(yamlPath, []byte("questions:\n  - concept: heap\n    difficulty: beginner\n    type: essay\n    prompt: Explain heaps.\n"), 0o644)
	qs, err := LoadFile(yamlPath)
	if err != nil || len(qs) != 1 || qs[0].Concept != "heap" {
		t.Fatalf("yaml: %+v, %v", qs, err)
	}

	jsonPath := filepath.Join(dir, "bank.json")
	os.WriteFile(jsonPath, []byte(`[{"concept":"trie","difficulty":"advanced","type":"mcq","prompt":"p","correct_option":"a","options":["a","b"]}]`), 0o644)
	qs, err = LoadFile(jsonPath)
	if err != nil || len(qs) != 1 || qs[0].CorrectOption != "a" || len(qs[0].Options) != 2 {
		t.Fatalf("json: %+v, %v", qs, err)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSelectorAgainstStore(t *testing.T) {
	b := openTestBank(t)
	ctx := context.Background()
	if _, err := Seed(ctx, b); err != nil {
		t.Fatalf("seed: %v", err)
	}

	s := NewSelector(fixedMastery{}, b)
	sel, err := s.Select(ctx, "u1", "binary_search", 3)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(sel.Questions))
	}
	seen := map[string]bool{}
	for _, ref := range sel.Questions {
		if seen[ref.ID] {
			t.Fatalf("duplicate %s", ref.ID)
		}
		seen[ref.ID] = true
	}
}
