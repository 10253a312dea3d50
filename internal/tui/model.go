package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/colonyops/diffwatch/internal/core/notify"
	"github.com/colonyops/diffwatch/internal/core/view"
)

// FocusedPanel represents which panel has keyboard focus.
type FocusedPanel int

const (
	FocusFileList FocusedPanel = iota
	FocusViewer
)

// Deps carries the collaborators the model drives.
type Deps struct {
	Controller *view.Controller
	Notices    *notify.Store
}

// Model is the root bubbletea model: file list on the left, diff
// viewport on the right, notification status bar at the bottom. All
// repository mutation goes through the controller; the model only
// renders what the controller applies.
type Model struct {
	controller *view.Controller
	notices    *notify.Store

	fileList FileListModel
	viewer   ViewerModel
	focused  FocusedPanel

	width  int
	height int

	notice  notify.Notification
	hasNote bool
}

// New creates the root model.
func New(deps Deps) Model {
	return Model{
		controller: deps.Controller,
		notices:    deps.Notices,
		fileList:   NewFileList(),
		viewer:     NewViewer(),
		focused:    FocusFileList,
	}
}

// Init opens the view.
func (m Model) Init() tea.Cmd {
	return m.controllerCmd(func(ctx context.Context) error {
		return m.controller.Show(ctx)
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case surfacesAppliedMsg:
		m.fileList.SetSurfaces(msg.surfaces)
		m.viewer.SetSurface(m.fileList.Selected())
		return m, nil

	case surfaceUpdatedMsg:
		m.fileList.ReplaceSurface(msg.surface)
		cur := m.viewer.Surface()
		if cur != nil && !cur.Info && !msg.surface.Info && cur.Entry.Path == msg.surface.Entry.Path {
			m.viewer.Replace(msg.surface)
		}
		return m, nil

	case viewClearedMsg:
		return m, tea.Quit

	case noticeMsg:
		m.notice = msg.notification
		m.hasNote = true
		return m, nil

	case opErrMsg:
		if msg.err != nil {
			m.notice = notify.Notification{Level: notify.LevelError, Message: msg.err.Error()}
			m.hasNote = true
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.controller.Disable()
		return m, tea.Quit

	case "tab":
		if m.focused == FocusFileList {
			m.focused = FocusViewer
		} else {
			m.focused = FocusFileList
		}
		return m, nil

	case "r":
		return m, m.controllerCmd(func(ctx context.Context) error {
			return m.controller.Refresh(ctx)
		})

	case "s":
		selected := m.fileList.Selected()
		if selected == nil || selected.Info {
			return m, nil
		}
		path := selected.Entry.Path
		return m, m.controllerCmd(func(ctx context.Context) error {
			return m.controller.StageFile(ctx, path)
		})

	case "f":
		selected := m.fileList.Selected()
		if selected == nil || selected.Info {
			return m, nil
		}
		path := selected.Entry.Path
		return m, m.controllerCmd(func(ctx context.Context) error {
			return m.controller.ToggleFull(ctx, path)
		})
	}

	switch m.focused {
	case FocusFileList:
		var moved bool
		m.fileList, moved = m.fileList.Update(msg)
		if moved {
			m.viewer.SetSurface(m.fileList.Selected())
		}
		return m, nil

	case FocusViewer:
		var cmd tea.Cmd
		m.viewer, cmd = m.viewer.Update(msg)
		return m, cmd
	}
	return m, nil
}

// controllerCmd runs one controller operation off the update loop.
// Failures come back as an opErrMsg for the status bar; the controller
// has already routed them to the notification store.
func (m Model) controllerCmd(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(context.Background()); err != nil {
			return opErrMsg{err: err}
		}
		return nil
	}
}

func (m *Model) setSize(width, height int) {
	m.width = width
	m.height = height

	listWidth := width * 30 / 100
	viewerWidth := width - listWidth - 1
	panelHeight := height - 1

	m.fileList.SetSize(listWidth, panelHeight)
	m.viewer.SetSize(viewerWidth, panelHeight)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	listWidth := m.width * 30 / 100
	viewerWidth := m.width - listWidth - 1
	panelHeight := m.height - 1

	listStyle := lipgloss.NewStyle().Width(listWidth).Height(panelHeight)
	viewerStyle := lipgloss.NewStyle().Width(viewerWidth).Height(panelHeight)

	separator := lipgloss.NewStyle().
		Width(1).
		Height(panelHeight).
		Render(textMutedStyle.Render("│"))

	content := lipgloss.JoinHorizontal(lipgloss.Top,
		listStyle.Render(m.fileList.View()),
		separator,
		viewerStyle.Render(m.viewer.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderStatusBar())
}

func (m Model) renderStatusBar() string {
	left := m.statusNotice()
	right := textMutedStyle.Render(m.helpText())

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if spacing < 0 {
		spacing = 0
	}

	bar := left + strings.Repeat(" ", spacing) + right
	return statusBarStyle.Width(m.width).Render(bar)
}

func (m Model) statusNotice() string {
	if !m.hasNote {
		return textMutedStyle.Render("diffwatch")
	}

	switch m.notice.Level {
	case notify.LevelError:
		return textErrorStyle.Render(m.notice.Message)
	case notify.LevelWarning:
		return textWarningStyle.Render(m.notice.Message)
	default:
		return textPrimaryStyle.Render(m.notice.Message)
	}
}

func (m Model) helpText() string {
	switch m.focused {
	case FocusViewer:
		return "↑/↓ scroll • tab files • f full • r refresh • q quit"
	default:
		return "j/k navigate • tab diff • s stage • f full • r refresh • q quit"
	}
}
