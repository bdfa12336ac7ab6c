package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/adaptutor/internal/ui/theme"
)

// StrengthBar renders a mastery strength in [0,1] as a fixed-width bar
// followed by the percentage.
func StrengthBar(strength float64, width int) string {
	width = max(width, 4)
	strength = min(max(strength, 0), 1)

	filled := min(int(float64(width)*strength+0.5), width)

	color := theme.Error
	switch {
	case strength >= 0.6:
		color = theme.Success
	case strength >= 0.3:
		color = theme.Accent
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("░", width-filled))

	return bar + lipgloss.NewStyle().Foreground(theme.TextDim).Render(fmt.Sprintf(" %3d%%", int(strength*100+0.5)))
}
