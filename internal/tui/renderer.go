package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/colonyops/diffwatch/internal/core/eventbus"
	"github.com/colonyops/diffwatch/internal/core/notify"
	"github.com/colonyops/diffwatch/internal/core/view"
)

// Sender is the message-delivery half of a bubbletea program.
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramRenderer adapts the controller's rendering collaborator onto
// a bubbletea program: every renderer call becomes a message on the
// program's queue, so pane state only changes on the model's update
// loop. The sender attaches after construction since the
// controller exists before the program does; calls before Attach are
// dropped.
type ProgramRenderer struct {
	mu     sync.Mutex
	sender Sender
}

var _ view.Renderer = (*ProgramRenderer)(nil)

// NewProgramRenderer creates a detached renderer.
func NewProgramRenderer() *ProgramRenderer {
	return &ProgramRenderer{}
}

// Attach connects the renderer to a running program.
func (r *ProgramRenderer) Attach(sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sender = sender
}

func (r *ProgramRenderer) Apply(surfaces []*view.Surface) {
	r.send(surfacesAppliedMsg{surfaces: surfaces})
}

func (r *ProgramRenderer) Update(surface *view.Surface) {
	r.send(surfaceUpdatedMsg{surface: surface})
}

func (r *ProgramRenderer) Clear() {
	r.send(viewClearedMsg{})
}

// ForwardNotifications subscribes the notification store and the
// program's status bar to bus notifications.
func ForwardNotifications(bus *eventbus.EventBus, notices *notify.Store, sender Sender) {
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		notices.Add(p.Level, p.Message)
		sender.Send(noticeMsg{notification: notify.Notification{
			Level:     p.Level,
			Message:   p.Message,
			CreatedAt: time.Now(),
		}})
	})
}

func (r *ProgramRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	sender := r.sender
	r.mu.Unlock()

	if sender != nil {
		sender.Send(msg)
	}
}
