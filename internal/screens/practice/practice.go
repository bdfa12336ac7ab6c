// Package practice is the TUI screen that runs one round of questions for
// a concept: select, answer, evaluate, show feedback.
package practice

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/router"
	"github.com/abhisek/adaptutor/internal/screen"
	"github.com/abhisek/adaptutor/internal/tutor"
	"github.com/abhisek/adaptutor/internal/ui/components"
	"github.com/abhisek/adaptutor/internal/ui/layout"
)

const (
	selectTimeout   = 30 * time.Second
	evaluateTimeout = 3 * time.Minute
	editorWidth     = 72
	editorHeight    = 10
)

// Service is what the screen needs from the tutor.
type Service interface {
	SelectQuestions(ctx context.Context, userID, concept string, n int) (questions.Selection, error)
	EvaluateAnswer(ctx context.Context, req tutor.EvaluateRequest) (*evaluator.Result, error)
}

type phase int

const (
	phaseLoading phase = iota
	phaseAnswering
	phaseEvaluating
	phaseFeedback
	phaseDone
	phaseError
)

// PracticeScreen implements screen.Screen for one practice round.
type PracticeScreen struct {
	svc     Service
	user    string
	concept string

	phase     phase
	questions []questions.Ref
	index     int
	start     mastery.Record

	choice components.MultiChoice
	input  components.TextInput
	editor components.TextArea

	result  *evaluator.Result
	results []*evaluator.Result
	errMsg  string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)

// New creates a practice screen for user on concept.
func New(svc Service, user, concept string) *PracticeScreen {
	return &PracticeScreen{svc: svc, user: user, concept: concept}
}

func (s *PracticeScreen) Init() tea.Cmd {
	return s.selectQuestions()
}

func (s *PracticeScreen) Title() string {
	return "Practice: " + strings.ReplaceAll(s.concept, "_", " ")
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	switch s.phase {
	case phaseAnswering:
		q := s.current()
		switch {
		case q == nil:
			return nil
		case q.Type == questions.TypeMCQ:
			return []layout.KeyHint{{Key: "↑↓", Description: "Choose"}, {Key: "1-9", Description: "Pick"}, {Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
		case multiline(q.Type):
			return []layout.KeyHint{{Key: "Ctrl+S", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
		default:
			return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Back"}}
		}
	case phaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case phaseDone, phaseError:
		return []layout.KeyHint{{Key: "Enter", Description: "Back to concepts"}}
	}
	return nil
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case selectionMsg:
		return s.handleSelection(msg)
	case evaluatedMsg:
		return s.handleEvaluated(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	// Cursor blinks and other component messages.
	if s.phase == phaseAnswering {
		return s.forward(msg)
	}
	return s, nil
}

func (s *PracticeScreen) selectQuestions() tea.Cmd {
	svc, user, concept := s.svc, s.user, s.concept
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), selectTimeout)
		defer cancel()
		sel, err := svc.SelectQuestions(ctx, user, concept, 0)
		return selectionMsg{Selection: sel, Err: err}
	}
}

func (s *PracticeScreen) evaluate(q questions.Ref, answer string) tea.Cmd {
	req := tutor.EvaluateRequest{
		UserID:     s.user,
		Concept:    s.concept,
		QuestionID: q.ID,
	}
	if q.Type == questions.TypeCode {
		req.SourceCode = answer
		req.LanguageID = q.LanguageID
	} else {
		req.Answer = answer
	}

	svc := s.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
		defer cancel()
		res, err := svc.EvaluateAnswer(ctx, req)
		return evaluatedMsg{Result: res, Err: err}
	}
}

func (s *PracticeScreen) handleSelection(msg selectionMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase, s.errMsg = phaseError, msg.Err.Error()
		return s, nil
	}
	s.start = msg.Selection.Mastery
	s.questions = msg.Selection.Questions
	if len(s.questions) == 0 {
		s.phase, s.errMsg = phaseError, "No questions available for this concept yet."
		return s, nil
	}
	s.index = 0
	return s, s.showQuestion()
}

func (s *PracticeScreen) handleEvaluated(msg evaluatedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		// Structural rejections (e.g. empty code) go back to the editor.
		s.errMsg = msg.Err.Error()
		s.phase = phaseAnswering
		if q := s.current(); q != nil && q.Type == questions.TypeMCQ {
			s.choice.Submitted = false
		}
		return s, nil
	}
	s.errMsg = ""
	s.result = msg.Result
	s.results = append(s.results, msg.Result)
	s.phase = phaseFeedback
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	switch s.phase {
	case phaseLoading, phaseEvaluating:
		return s, nil

	case phaseError, phaseDone:
		if key == "enter" || key == "q" {
			return s, popScreen
		}
		return s, nil

	case phaseFeedback:
		if key != "enter" && key != "space" {
			return s, nil
		}
		s.result = nil
		s.index++
		if s.index >= len(s.questions) {
			s.phase = phaseDone
			return s, nil
		}
		return s, s.showQuestion()
	}

	q := s.current()
	if q == nil {
		return s, nil
	}

	switch {
	case q.Type == questions.TypeMCQ:
		var cmd tea.Cmd
		s.choice, cmd = s.choice.Update(msg)
		if s.choice.Submitted {
			return s.submit(s.choice.Choice())
		}
		return s, cmd
	case multiline(q.Type):
		if key == "ctrl+s" {
			return s.submit(s.editor.Value())
		}
	default:
		if key == "enter" {
			return s.submit(s.input.Value())
		}
	}
	return s.forward(msg)
}

func (s *PracticeScreen) submit(answer string) (screen.Screen, tea.Cmd) {
	q := s.current()
	if q == nil {
		return s, nil
	}
	if strings.TrimSpace(answer) == "" && q.Type == questions.TypeCode {
		s.errMsg = "Write some code before submitting."
		return s, nil
	}
	s.phase = phaseEvaluating
	s.errMsg = ""
	return s, s.evaluate(*q, answer)
}

// forward passes msg to the active answer widget.
func (s *PracticeScreen) forward(msg tea.Msg) (screen.Screen, tea.Cmd) {
	q := s.current()
	if q == nil {
		return s, nil
	}
	var cmd tea.Cmd
	switch {
	case q.Type == questions.TypeMCQ:
		s.choice, cmd = s.choice.Update(msg)
	case multiline(q.Type):
		s.editor, cmd = s.editor.Update(msg)
	default:
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

// showQuestion resets the answer widget for the current question.
func (s *PracticeScreen) showQuestion() tea.Cmd {
	s.phase = phaseAnswering
	q := s.current()
	switch {
	case q.Type == questions.TypeMCQ:
		s.choice = components.NewMultiChoice(q.Options)
		return nil
	case q.Type == questions.TypeCode:
		s.editor = components.NewTextArea("Write your program here. It reads stdin and writes stdout.", editorWidth, editorHeight, true)
		return s.editor.Init()
	case q.Type == questions.TypeEssay:
		s.editor = components.NewTextArea("Write your answer...", editorWidth, editorHeight, false)
		return s.editor.Init()
	default:
		s.input = components.NewTextInput("Type your answer...", 500, editorWidth)
		return s.input.Init()
	}
}

func (s *PracticeScreen) current() *questions.Ref {
	if s.index < 0 || s.index >= len(s.questions) {
		return nil
	}
	return &s.questions[s.index]
}

func multiline(t questions.Type) bool {
	return t == questions.TypeCode || t == questions.TypeEssay
}

func popScreen() tea.Msg {
	return router.PopScreenMsg{}
}
