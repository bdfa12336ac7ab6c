package questions

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/adaptutor/internal/mastery"
)

type fixedMastery struct {
	rec mastery.Record
	err error
}

func (f fixedMastery) Get(context.Context, string, string) (mastery.Record, error) {
	return f.rec, f.err
}

// fakeSource returns questions from an in-memory bank. When sticky is set,
// Sample always returns the first question of the level, ignoring exclude,
// to exercise the duplicate fallback.
type fakeSource struct {
	bank       map[Difficulty][]Question
	sticky     bool
	sampleErr  error
	sampleHits int
	firstHits  int
}

func (f *fakeSource) Sample(_ context.Context, _ string, d Difficulty, exclude []string) (*Question, error) {
	f.sampleHits++
	if f.sampleErr != nil {
		return nil, f.sampleErr
	}
	qs := f.bank[d]
	if f.sticky && len(qs) > 0 {
		return &qs[0], nil
	}
	return firstNotIn(qs, exclude), nil
}

func (f *fakeSource) FirstExcluding(_ context.Context, _ string, d Difficulty, exclude []string) (*Question, error) {
	f.firstHits++
	return firstNotIn(f.bank[d], exclude), nil
}

func firstNotIn(qs []Question, exclude []string) *Question {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	for i := range qs {
		if !skip[qs[i].ID] {
			return &qs[i]
		}
	}
	return nil
}

func q(id string, d Difficulty) Question {
	return Question{ID: id, Concept: "graphs", Difficulty: d, Type: TypeShortAnswer, Prompt: "p-" + id, ExpectedAnswer: "secret"}
}

func fullBank() map[Difficulty][]Question {
	return map[Difficulty][]Question{
		Beginner:     {q("b1", Beginner), q("b2", Beginner)},
		Intermediate: {q("i1", Intermediate), q("i2", Intermediate)},
		Advanced:     {q("a1", Advanced), q("a2", Advanced)},
	}
}

func TestPlanFor(t *testing.T) {
	tests := []struct {
		strength float64
		want     []Difficulty
	}{
		{0, []Difficulty{Beginner, Beginner, Intermediate}},
		{0.29, []Difficulty{Beginner, Beginner, Intermediate}},
		{0.3, []Difficulty{Intermediate, Intermediate, Advanced}},
		{0.59, []Difficulty{Intermediate, Intermediate, Advanced}},
		{0.6, []Difficulty{Advanced, Intermediate, Advanced}},
		{1, []Difficulty{Advanced, Intermediate, Advanced}},
	}
	for _, tt := range tests {
		got := PlanFor(tt.strength)
		if len(got) != 3 {
			t.Fatalf("PlanFor(%v) len = %d", tt.strength, len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("PlanFor(%v) = %v, want %v", tt.strength, got, tt.want)
				break
			}
		}
	}
}

func TestSelectFollowsPlan(t *testing.T) {
	src := &fakeSource{bank: fullBank()}
	s := NewSelector(fixedMastery{rec: mastery.Record{Strength: 0.7}}, src)

	sel, err := s.Select(context.Background(), "u1", "graphs", 5)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(sel.Questions))
	}
	want := []Difficulty{Advanced, Intermediate, Advanced}
	for i, ref := range sel.Questions {
		if ref.Difficulty != want[i] {
			t.Errorf("question %d difficulty = %s, want %s", i, ref.Difficulty, want[i])
		}
	}
	if sel.Mastery.Strength != 0.7 {
		t.Errorf("mastery snapshot = %+v", sel.Mastery)
	}
}

func TestSelectTruncatesToN(t *testing.T) {
	s := NewSelector(fixedMastery{}, &fakeSource{bank: fullBank()})

	sel, err := s.Select(context.Background(), "u1", "graphs", 1)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 1 || sel.Questions[0].Difficulty != Beginner {
		t.Fatalf("unexpected selection: %+v", sel.Questions)
	}

	sel, err = s.Select(context.Background(), "u1", "graphs", 0)
	if err != nil || len(sel.Questions) != 0 {
		t.Fatalf("n=0: %+v, %v", sel.Questions, err)
	}
}

func TestSelectNoDuplicatesWhenSamplingRepeats(t *testing.T) {
	src := &fakeSource{bank: fullBank(), sticky: true}
	s := NewSelector(fixedMastery{}, src)

	sel, err := s.Select(context.Background(), "u1", "graphs", 3)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	seen := map[string]bool{}
	for _, ref := range sel.Questions {
		if seen[ref.ID] {
			t.Fatalf("duplicate question %s in %+v", ref.ID, sel.Questions)
		}
		seen[ref.ID] = true
	}
	if len(sel.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(sel.Questions))
	}
	if src.firstHits == 0 {
		t.Error("expected deterministic fallback to be used")
	}
}

func TestSelectSkipsExhaustedLevel(t *testing.T) {
	bank := fullBank()
	bank[Beginner] = bank[Beginner][:1]
	s := NewSelector(fixedMastery{}, &fakeSource{bank: bank})

	sel, err := s.Select(context.Background(), "u1", "graphs", 3)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 2 {
		t.Fatalf("got %+v, want b1 and one intermediate", sel.Questions)
	}
	if sel.Questions[0].ID != "b1" || sel.Questions[1].Difficulty != Intermediate {
		t.Errorf("unexpected selection: %+v", sel.Questions)
	}
}

func TestSelectEmptyBank(t *testing.T) {
	s := NewSelector(fixedMastery{}, &fakeSource{bank: map[Difficulty][]Question{}})

	sel, err := s.Select(context.Background(), "u1", "graphs", 3)
	if err != nil {
		t.Fatalf("select on empty bank: %v", err)
	}
	if sel.Questions == nil || len(sel.Questions) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", sel.Questions)
	}
	if sel.Mastery.Easiness != 0 {
		t.Errorf("mastery snapshot should be passed through: %+v", sel.Mastery)
	}
}

func TestSelectSampleErrorFallsBack(t *testing.T) {
	src := &fakeSource{bank: fullBank(), sampleErr: errors.New("boom")}
	s := NewSelector(fixedMastery{}, src)

	sel, err := s.Select(context.Background(), "u1", "graphs", 3)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 3 {
		t.Fatalf("got %d questions, want 3", len(sel.Questions))
	}
}

func TestSelectMasteryErrorSurfaces(t *testing.T) {
	s := NewSelector(fixedMastery{err: errors.New("db down")}, &fakeSource{bank: fullBank()})
	if _, err := s.Select(context.Background(), "u1", "graphs", 3); err == nil {
		t.Fatal("expected mastery read error")
	}
}

type stubFiller struct {
	calls int
}

func (f *stubFiller) Fill(_ context.Context, concept string, d Difficulty, _ []string) (*Question, error) {
	f.calls++
	gen := Question{ID: "gen-" + string(d), Concept: concept, Difficulty: d, Type: TypeEssay, Prompt: "generated"}
	return &gen, nil
}

func TestSelectUsesFillerForEmptyLevel(t *testing.T) {
	bank := fullBank()
	delete(bank, Advanced)
	f := &stubFiller{}
	s := NewSelector(fixedMastery{rec: mastery.Record{Strength: 0.4}}, &fakeSource{bank: bank}, WithFiller(f))

	sel, err := s.Select(context.Background(), "u1", "graphs", 3)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(sel.Questions) != 3 || sel.Questions[2].ID != "gen-advanced" {
		t.Fatalf("unexpected selection: %+v", sel.Questions)
	}
	if f.calls != 1 {
		t.Errorf("filler calls = %d, want 1", f.calls)
	}
}
