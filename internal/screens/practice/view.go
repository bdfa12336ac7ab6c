package practice

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptutor/internal/evaluator"
	"github.com/abhisek/adaptutor/internal/questions"
	"github.com/abhisek/adaptutor/internal/ui/components"
	"github.com/abhisek/adaptutor/internal/ui/layout"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	switch s.phase {
	case phaseLoading:
		return centered(width, height, theme.Hint.Render("Picking questions..."))
	case phaseError:
		return centered(width, height, theme.Incorrect.Render(s.errMsg)+"\n\n"+theme.Hint.Render("Press Enter to go back"))
	case phaseDone:
		return s.renderSummary(width, height)
	case phaseFeedback:
		return s.renderFeedback(width)
	}
	return s.renderQuestion(width)
}

func (s *PracticeScreen) renderQuestion(width int) string {
	q := s.current()
	if q == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(s.infoLine(q, width))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().Width(max(width-4, 20)).Foreground(theme.Text).Bold(true).Render(q.Prompt))
	b.WriteString("\n\n")

	switch {
	case q.Type == questions.TypeMCQ:
		b.WriteString(s.choice.View())
	case multiline(q.Type):
		b.WriteString(s.editor.View())
	default:
		b.WriteString("Answer: " + s.input.View())
	}

	if s.phase == phaseEvaluating {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Evaluating..."))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Incorrect.Render(s.errMsg))
	}
	return b.String()
}

func (s *PracticeScreen) infoLine(q *questions.Ref, width int) string {
	left := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).
		Render(fmt.Sprintf("  Question %d/%d", s.index+1, len(s.questions)))
	right := theme.Hint.Render(fmt.Sprintf("%s · %s", q.Difficulty, strings.ReplaceAll(string(q.Type), "_", " ")))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right) - 4
	if pad < 1 {
		return left + " " + right
	}
	return left + strings.Repeat(" ", pad) + right
}

func (s *PracticeScreen) renderFeedback(width int) string {
	res := s.result
	if res == nil {
		return ""
	}
	d := res.Details

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.ScoreStyle(res.Score).Render(fmt.Sprintf("  Score %.0f%%   Quality %d/5", res.Score*100, res.Quality)))
	b.WriteString("\n\n")

	if d.CorrectOption != "" && res.Score < 1 {
		b.WriteString(theme.Body.Render("  Correct option: " + d.CorrectOption))
		b.WriteString("\n")
	}
	if d.Total > 0 {
		b.WriteString(theme.Body.Render(fmt.Sprintf("  Testcases passed: %d/%d", d.Passed, d.Total)))
		b.WriteString("\n")
		for i, tc := range d.Testcases {
			b.WriteString(renderTestcase(i, tc))
			b.WriteString("\n")
		}
	}

	wrap := lipgloss.NewStyle().Width(max(width-6, 20)).PaddingLeft(2)
	if d.Feedback != "" {
		b.WriteString("\n")
		b.WriteString(wrap.Foreground(theme.Text).Render(d.Feedback))
		b.WriteString("\n")
	}
	if d.Suggestion != "" {
		b.WriteString(wrap.Foreground(theme.Secondary).Render("Tip: " + d.Suggestion))
		b.WriteString("\n")
	}
	if d.Note != "" {
		b.WriteString(wrap.Foreground(theme.TextDim).Render(d.Note))
		b.WriteString("\n")
	}
	if res.Outcome != evaluator.Succeeded {
		b.WriteString(theme.Hint.Render("  Some checks were unavailable; this grade used a fallback."))
		b.WriteString("\n")
	}

	if res.Mastery != nil {
		b.WriteString("\n")
		b.WriteString("  Mastery " + components.StrengthBar(res.Mastery.Strength, 24))
		if res.NextDue != nil {
			b.WriteString(theme.Hint.Render("   next review " + res.NextDue.Local().Format("Jan 2")))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderTestcase(i int, tc evaluator.TestcaseResult) string {
	mark := theme.Correct.Render("✓")
	if !tc.Passed {
		mark = theme.Incorrect.Render("✗")
	}
	line := fmt.Sprintf("    %s case %d", mark, i+1)
	switch {
	case tc.Error != "":
		line += theme.Hint.Render("  " + tc.Error)
	case !tc.Passed && tc.Status != "":
		line += theme.Hint.Render("  " + tc.Status)
	}
	return line
}

func (s *PracticeScreen) renderSummary(width, height int) string {
	var total float64
	for _, r := range s.results {
		total += r.Score
	}
	avg := 0.0
	if len(s.results) > 0 {
		avg = total / float64(len(s.results))
	}

	var b strings.Builder
	b.WriteString(theme.Title.Render("Round complete"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("Answered %d   Average score %.0f%%", len(s.results), avg*100)))
	b.WriteString("\n\n")
	b.WriteString("Before  " + components.StrengthBar(s.start.Strength, 24))
	if n := len(s.results); n > 0 && s.results[n-1].Mastery != nil {
		last := s.results[n-1].Mastery
		b.WriteString("\n")
		b.WriteString("After   " + components.StrengthBar(last.Strength, 24))
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(last.State(time.Now()).Label()))
	}
	return centered(width, height, b.String())
}

func centered(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
