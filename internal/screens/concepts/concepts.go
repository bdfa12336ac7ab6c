// Package concepts is the TUI home screen: the concept list with the
// learner's mastery of each.
package concepts

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/router"
	"github.com/abhisek/adaptutor/internal/screen"
	"github.com/abhisek/adaptutor/internal/screens/practice"
	"github.com/abhisek/adaptutor/internal/ui/components"
	"github.com/abhisek/adaptutor/internal/ui/layout"
	"github.com/abhisek/adaptutor/internal/ui/theme"
)

const loadTimeout = 10 * time.Second

// Service is what the concept list and the screens it opens need.
type Service interface {
	practice.Service
	Concepts(ctx context.Context) ([]string, error)
	GetMastery(ctx context.Context, userID, concept string) (mastery.Record, error)
}

type conceptsLoadedMsg struct {
	concepts []string
	records  map[string]mastery.Record
	err      error
}

// ConceptsScreen lists concepts and starts practice on the selected one.
type ConceptsScreen struct {
	svc  Service
	user string
	now  func() time.Time

	loaded   bool
	err      error
	concepts []string
	records  map[string]mastery.Record
	menu     components.Menu
}

var _ screen.Screen = (*ConceptsScreen)(nil)
var _ screen.Resumer = (*ConceptsScreen)(nil)
var _ screen.KeyHintProvider = (*ConceptsScreen)(nil)

// New creates the concept list for user.
func New(svc Service, user string) *ConceptsScreen {
	return &ConceptsScreen{svc: svc, user: user, now: time.Now}
}

func (c *ConceptsScreen) Init() tea.Cmd {
	return c.load()
}

// Resume reloads mastery after a practice round.
func (c *ConceptsScreen) Resume() tea.Cmd {
	return c.load()
}

func (c *ConceptsScreen) Title() string {
	return "Concepts"
}

func (c *ConceptsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
		{Key: "r", Description: "Refresh"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (c *ConceptsScreen) load() tea.Cmd {
	svc, user := c.svc, c.user
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		concepts, err := svc.Concepts(ctx)
		if err != nil {
			return conceptsLoadedMsg{err: err}
		}
		records := make(map[string]mastery.Record, len(concepts))
		for _, concept := range concepts {
			rec, err := svc.GetMastery(ctx, user, concept)
			if err != nil {
				return conceptsLoadedMsg{err: err}
			}
			records[concept] = rec
		}
		return conceptsLoadedMsg{concepts: concepts, records: records}
	}
}

func (c *ConceptsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case conceptsLoadedMsg:
		c.loaded = true
		c.err = msg.err
		if msg.err == nil {
			selected := c.menu.Selected
			c.concepts, c.records = msg.concepts, msg.records
			c.menu = components.NewMenu(c.items())
			if selected < len(c.menu.Items) {
				c.menu.Selected = selected
			}
		}
		return c, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return c, c.load()
		}
	}

	var cmd tea.Cmd
	c.menu, cmd = c.menu.Update(msg)
	return c, cmd
}

func (c *ConceptsScreen) items() []components.MenuItem {
	now := c.now()
	items := make([]components.MenuItem, 0, len(c.concepts))
	for _, concept := range c.concepts {
		rec := c.records[concept]
		items = append(items, components.MenuItem{
			Label:  strings.ReplaceAll(concept, "_", " "),
			Detail: components.StrengthBar(rec.Strength, 16) + "  " + stateLabel(rec.State(now)),
			Action: c.practice(concept),
		})
	}
	return items
}

func (c *ConceptsScreen) practice(concept string) func() tea.Cmd {
	return func() tea.Cmd {
		return func() tea.Msg {
			return router.PushScreenMsg{Screen: practice.New(c.svc, c.user, concept)}
		}
	}
}

func stateLabel(s mastery.State) string {
	style := theme.Hint
	switch s {
	case mastery.StateMastered:
		style = theme.Correct
	case mastery.StateDue:
		style = lipgloss.NewStyle().Foreground(theme.Accent)
	case mastery.StateProficient:
		style = theme.Partial
	}
	return style.Render(s.Label())
}

func (c *ConceptsScreen) View(width, height int) string {
	var body string
	switch {
	case !c.loaded:
		body = theme.Hint.Render("Loading concepts...")
	case c.err != nil:
		body = theme.Incorrect.Render("Could not load concepts: "+c.err.Error()) + "\n\n" + theme.Hint.Render("Press r to retry")
	case len(c.concepts) == 0:
		body = theme.Body.Render("The question bank is empty.") + "\n\n" +
			theme.Hint.Render("Import questions with: adaptutor questions import <file>")
	default:
		body = theme.Title.Render("Pick a concept to practice") + "\n\n" + c.menu.View()
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, body)
}
