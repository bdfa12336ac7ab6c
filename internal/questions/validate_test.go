package questions

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		q         Question
		wantField string
	}{
		{"valid short answer", Question{Concept: "c", Difficulty: Beginner, Type: TypeShortAnswer, Prompt: "p"}, ""},
		{"missing concept", Question{Difficulty: Beginner, Type: TypeEssay, Prompt: "p"}, "concept"},
		{"missing prompt", Question{Concept: "c", Difficulty: Beginner, Type: TypeEssay}, "prompt"},
		{"bad difficulty", Question{Concept: "c", Difficulty: "expert", Type: TypeEssay, Prompt: "p"}, "difficulty"},
		{"bad type", Question{Concept: "c", Difficulty: Beginner, Type: "oral", Prompt: "p"}, "type"},
		{"mcq without answer", Question{Concept: "c", Difficulty: Beginner, Type: TypeMCQ, Prompt: "p"}, "correct_option"},
		{"mcq answer not in options", Question{Concept: "c", Difficulty: Beginner, Type: TypeMCQ, Prompt: "p", Options: []string{"x", "y"}, CorrectOption: "z"}, "options"},
		{"mcq answer case-insensitive", Question{Concept: "c", Difficulty: Beginner, Type: TypeMCQ, Prompt: "p", Options: []string{"Queue"}, CorrectOption: "queue"}, ""},
		{"code without language", Question{Concept: "c", Difficulty: Beginner, Type: TypeCode, Prompt: "p"}, "language_id"},
		{"code empty expected", Question{Concept: "c", Difficulty: Beginner, Type: TypeCode, Prompt: "p", LanguageID: 71, Testcases: []Testcase{{Stdin: "1"}}}, "testcases[0].expected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.q)
			switch {
			case tt.wantField == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantField != "" && err == nil:
				t.Fatalf("expected error on %s", tt.wantField)
			case err != nil && err.Field != tt.wantField:
				t.Fatalf("field = %s, want %s", err.Field, tt.wantField)
			}
		})
	}
}

func TestNormalizeDefaultsCodeLanguage(t *testing.T) {
	q := Question{Concept: " c ", Difficulty: " Beginner", Type: "CODE", Prompt: " p "}
	Normalize(&q)
	if q.Concept != "c" || q.Prompt != "p" || q.Difficulty != Beginner || q.Type != TypeCode {
		t.Fatalf("not normalized: %+v", q)
	}
	if q.LanguageID != DefaultLanguageID {
		t.Errorf("language_id = %d, want %d", q.LanguageID, DefaultLanguageID)
	}
}

func TestParseDifficulty(t *testing.T) {
	if d, err := ParseDifficulty(" ADVANCED "); err != nil || d != Advanced {
		t.Fatalf("got %q, %v", d, err)
	}
	if _, err := ParseDifficulty("expert"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRefHidesAnswerKey(t *testing.T) {
	q := Question{ID: "1", Type: TypeMCQ, Options: []string{"a"}, CorrectOption: "a", ExpectedAnswer: "x"}
	ref := q.Ref()
	if ref.ID != "1" || len(ref.Options) != 1 {
		t.Fatalf("unexpected ref: %+v", ref)
	}
}
