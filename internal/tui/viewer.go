package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/diffwatch/internal/core/view"
)

// viewerHeaderHeight is the file info line plus its separator.
const viewerHeaderHeight = 2

// ViewerModel is the right pane: one surface's diff text in a
// scrollable viewport with per-line coloring.
type ViewerModel struct {
	surface  *view.Surface
	viewport viewport.Model
	width    int
	height   int
}

// NewViewer creates an empty viewer.
func NewViewer() ViewerModel {
	return ViewerModel{viewport: viewport.New(0, 0)}
}

// SetSurface swaps the displayed surface and resets scroll.
func (m *ViewerModel) SetSurface(s *view.Surface) {
	m.surface = s
	m.viewport.SetContent(renderSurface(s))
	m.viewport.GotoTop()
}

// Replace swaps in a regenerated surface for the displayed one,
// keeping the scroll position where possible.
func (m *ViewerModel) Replace(s *view.Surface) {
	m.surface = s
	m.viewport.SetContent(renderSurface(s))
}

// Surface returns the displayed surface, or nil.
func (m *ViewerModel) Surface() *view.Surface { return m.surface }

// Update handles scrolling.
func (m ViewerModel) Update(msg tea.Msg) (ViewerModel, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetSize updates the pane dimensions.
func (m *ViewerModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-viewerHeaderHeight)
}

// View renders the header line plus the scrollable content.
func (m ViewerModel) View() string {
	if m.surface == nil {
		return textMutedStyle.Render("no file selected")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m ViewerModel) renderHeader() string {
	title := textPrimaryBoldStyle.Render(m.surface.Title())
	if m.surface.FullMode {
		title += " " + textPrimaryStyle.Render("[full]")
	}

	info := title
	if !m.surface.Info {
		info += " " + textMutedStyle.Render(fmt.Sprintf("(+%d, -%d)", m.surface.Additions, m.surface.Deletions))
	}

	sepWidth := max(1, m.width)
	separator := textMutedStyle.Render(strings.Repeat("─", sepWidth))
	return info + "\n" + separator
}

func renderSurface(s *view.Surface) string {
	if s == nil {
		return ""
	}

	styled := make([]string, len(s.Lines))
	for i, line := range s.Lines {
		if s.Info {
			styled[i] = textMutedStyle.Render(line)
			continue
		}
		styled[i] = RenderDiffLine(line)
	}
	return strings.Join(styled, "\n")
}
