package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/diffwatch/internal/core/diff"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultPalette is tokyo-night.
var DefaultPalette = Palette{
	Primary:    lipgloss.Color("#7aa2f7"),
	Foreground: lipgloss.Color("#c0caf5"),
	Muted:      lipgloss.Color("#565f89"),
	Surface:    lipgloss.Color("#3b4261"),
	Success:    lipgloss.Color("#9ece6a"),
	Warning:    lipgloss.Color("#e0af68"),
	Error:      lipgloss.Color("#f7768e"),
}

var (
	textPrimaryStyle     = lipgloss.NewStyle().Foreground(DefaultPalette.Primary)
	textPrimaryBoldStyle = lipgloss.NewStyle().Foreground(DefaultPalette.Primary).Bold(true)
	textMutedStyle       = lipgloss.NewStyle().Foreground(DefaultPalette.Muted)
	textWarningStyle     = lipgloss.NewStyle().Foreground(DefaultPalette.Warning)
	textErrorStyle       = lipgloss.NewStyle().Foreground(DefaultPalette.Error)

	statusBarStyle = lipgloss.NewStyle().Background(DefaultPalette.Surface)

	selectedItemStyle = lipgloss.NewStyle().
				Foreground(DefaultPalette.Foreground).
				Background(DefaultPalette.Surface)

	kindNewStyle      = lipgloss.NewStyle().Foreground(DefaultPalette.Success)
	kindModifiedStyle = lipgloss.NewStyle().Foreground(DefaultPalette.Warning)
	kindDeletedStyle  = lipgloss.NewStyle().Foreground(DefaultPalette.Error)

	diffAddStyle    = lipgloss.NewStyle().Foreground(DefaultPalette.Success)
	diffDelStyle    = lipgloss.NewStyle().Foreground(DefaultPalette.Error)
	diffHunkStyle   = lipgloss.NewStyle().Foreground(DefaultPalette.Primary)
	diffHeaderStyle = lipgloss.NewStyle().Foreground(DefaultPalette.Muted)
)

// RenderDiffLine colorizes one line of unified diff text. Header
// classification defers to the same predicates the synthesizer strips
// by, so the two stay in agreement.
func RenderDiffLine(line string) string {
	if class, ok := diff.MatchHeader(line); ok {
		if class == diff.HunkHeader {
			return diffHunkStyle.Render(line)
		}
		return diffHeaderStyle.Render(line)
	}

	switch {
	case strings.HasPrefix(line, "+"):
		return diffAddStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return diffDelStyle.Render(line)
	default:
		return line
	}
}
