package app

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/router"
	"github.com/abhisek/adaptutor/internal/tutor"
)

type stubService struct{}

func (stubService) SelectQuestions(context.Context, string, string, int) (questions.Selection, error) {
	return questions.Selection{}, nil
}

func (stubService) EvaluateAnswer(context.Context, tutor.EvaluateRequest) (*evaluator.Result, error) {
	return nil, nil
}

func (stubService) Concepts(context.Context) ([]string, error) {
	return []string{"recursion"}, nil
}

func (stubService) GetMastery(context.Context, string, string) (mastery.Record, error) {
	return mastery.DefaultRecord(), nil
}

func TestInitLoadsConceptScreen(t *testing.T) {
	m := newAppModel(Options{Service: stubService{}, UserID: "ada"})
	model, _ := m.Update(m.Init()())
	model, _ = model.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	app := model.(AppModel)
	if app.width != 100 || app.height != 30 {
		t.Fatalf("size not recorded: %dx%d", app.width, app.height)
	}
	if got := app.router.Active().Title(); got != "Concepts" {
		t.Errorf("expected Concepts screen, got %q", got)
	}
	if !strings.Contains(app.router.View(app.width, app.height), "recursion") {
		t.Error("expected concept in content")
	}
	hints := app.footerHints(app.router.Active())
	if len(hints) == 0 || hints[1].Description != "Practice" {
		t.Errorf("expected screen-provided hints, got %+v", hints)
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(Options{Service: stubService{}, UserID: "ada"})
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestEscOnRootIsNoop(t *testing.T) {
	m := newAppModel(Options{Service: stubService{}, UserID: "ada"})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("expected no command on root screen")
	}
}

func TestEscPopsPushedScreen(t *testing.T) {
	m := newAppModel(Options{Service: stubService{}, UserID: "ada"})
	model, _ := m.Update(m.Init()())
	_, cmd := model.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	model, _ = model.Update(cmd())
	if model.(AppModel).router.Depth() != 2 {
		t.Fatal("expected practice screen pushed")
	}

	_, cmd = model.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
