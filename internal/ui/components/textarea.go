package components

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
)

// TextArea wraps bubbles/textarea for essays and source code. Enter
// inserts a newline; callers pick their own submit key.
type TextArea struct {
	Model textarea.Model
}

// NewTextArea creates a focused editor of the given size. Line numbers
// are shown for code.
func NewTextArea(placeholder string, width, height int, lineNumbers bool) TextArea {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = lineNumbers
	ta.CharLimit = 0
	ta.SetWidth(width)
	ta.SetHeight(height)
	ta.Focus()
	return TextArea{Model: ta}
}

// Init returns the focus command.
func (t TextArea) Init() tea.Cmd {
	return t.Model.Focus()
}

func (t TextArea) Update(msg tea.Msg) (TextArea, tea.Cmd) {
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

func (t TextArea) View() string {
	return t.Model.View()
}

// Value returns the editor contents.
func (t TextArea) Value() string {
	return t.Model.Value()
}
