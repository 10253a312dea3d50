package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/core/view"
)

// FileListModel is the left pane: one row per surface, cursor-driven
// selection.
type FileListModel struct {
	surfaces []*view.Surface
	cursor   int
	offset   int
	width    int
	height   int
}

// NewFileList creates an empty file list.
func NewFileList() FileListModel {
	return FileListModel{}
}

// SetSurfaces replaces the listed surfaces. The cursor stays on the
// same path when it survives the refresh, otherwise it clamps.
func (m *FileListModel) SetSurfaces(surfaces []*view.Surface) {
	var keep string
	if s := m.Selected(); s != nil && !s.Info {
		keep = s.Entry.Path
	}

	m.surfaces = surfaces
	m.cursor = 0
	if keep != "" {
		for i, s := range surfaces {
			if !s.Info && s.Entry.Path == keep {
				m.cursor = i
				break
			}
		}
	}
	m.clampScroll()
}

// ReplaceSurface swaps in a regenerated surface for the listed one
// with the same path. Unknown paths are ignored.
func (m *FileListModel) ReplaceSurface(s *view.Surface) {
	if s == nil || s.Info {
		return
	}
	for i, cur := range m.surfaces {
		if !cur.Info && cur.Entry.Path == s.Entry.Path {
			m.surfaces[i] = s
			return
		}
	}
}

// Selected returns the surface under the cursor, or nil.
func (m *FileListModel) Selected() *view.Surface {
	if m.cursor < 0 || m.cursor >= len(m.surfaces) {
		return nil
	}
	return m.surfaces[m.cursor]
}

// Len returns the number of listed surfaces.
func (m *FileListModel) Len() int { return len(m.surfaces) }

// Update handles navigation keys. It reports whether the selection
// moved so the caller can sync the diff pane.
func (m FileListModel) Update(msg tea.Msg) (FileListModel, bool) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, false
	}

	before := m.cursor
	switch keyMsg.String() {
	case "j", "down":
		if m.cursor < len(m.surfaces)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g":
		m.cursor = 0
	case "G":
		m.cursor = max(0, len(m.surfaces)-1)
	}
	m.clampScroll()
	return m, m.cursor != before
}

// SetSize updates the pane dimensions.
func (m *FileListModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampScroll()
}

func (m *FileListModel) clampScroll() {
	if m.height <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// View renders the visible rows.
func (m FileListModel) View() string {
	if len(m.surfaces) == 0 {
		return textMutedStyle.Render("no changes")
	}

	end := len(m.surfaces)
	if m.height > 0 && m.offset+m.height < end {
		end = m.offset + m.height
	}

	var rows []string
	for i := m.offset; i < end; i++ {
		rows = append(rows, m.renderRow(m.surfaces[i], i == m.cursor))
	}
	return strings.Join(rows, "\n")
}

func (m FileListModel) renderRow(s *view.Surface, selected bool) string {
	var row string
	if s.Info {
		row = "  " + textMutedStyle.Render(s.Title())
	} else {
		kind := kindBadge(s.Entry.Kind)
		stats := textMutedStyle.Render(fmt.Sprintf("+%d -%d", s.Additions, s.Deletions))
		name := s.Entry.Path
		if s.FullMode {
			name += " " + textPrimaryStyle.Render("[full]")
		}
		row = fmt.Sprintf("%s %s %s", kind, name, stats)
	}

	if selected {
		row = "▶ " + row
		if m.width > 0 {
			row = selectedItemStyle.Width(m.width).Render(row)
		} else {
			row = selectedItemStyle.Render(row)
		}
	} else {
		row = "  " + row
	}
	return row
}

func kindBadge(kind git.ChangeKind) string {
	switch kind {
	case git.KindNew:
		return kindNewStyle.Render("N")
	case git.KindDeleted:
		return kindDeletedStyle.Render("D")
	default:
		return kindModifiedStyle.Render("M")
	}
}
