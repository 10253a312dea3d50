package eventbus

import (
	"fmt"
	"path/filepath"

	"github.com/colonyops/diffwatch/internal/core/notify"
)

// NotificationRouter maps domain events to user-facing notifications.
type NotificationRouter struct {
	bus *EventBus
}

// NewNotificationRouter constructs a router for event-to-notification mappings.
func NewNotificationRouter(bus *EventBus) *NotificationRouter {
	return &NotificationRouter{bus: bus}
}

// Register subscribes all supported event mappings.
func (r *NotificationRouter) Register() {
	if r == nil || r.bus == nil {
		return
	}

	r.bus.SubscribeFileStaged(func(p FileStagedPayload) {
		r.notifyf(notify.LevelInfo, "staged %s", p.Path)
	})

	r.bus.SubscribeRepoBusy(func(p RepoBusyPayload) {
		r.notifyf(notify.LevelWarning, "repository %s busy after %d attempts, refresh abandoned",
			filepath.Base(p.Root), p.Attempts)
	})

	r.bus.SubscribeViewRefreshed(func(p ViewRefreshedPayload) {
		r.notifyf(notify.LevelInfo, "view refreshed: %d file(s)", p.Surfaces)
	})
}

func (r *NotificationRouter) notifyf(level notify.Level, format string, args ...any) {
	r.bus.PublishNotificationPublished(NotificationPublishedPayload{
		Level:   level,
		Message: fmt.Sprintf(format, args...),
	})
}
