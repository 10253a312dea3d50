package eventbus

import "github.com/colonyops/diffwatch/internal/core/notify"

// HeadChangedPayload is emitted when a repository's head reference changes.
type HeadChangedPayload struct {
	Root string
}

// ViewRefreshedPayload is emitted after the diff view repopulates.
type ViewRefreshedPayload struct {
	Root     string
	Surfaces int
}

// FileStagedPayload is emitted when a file is staged from the view.
type FileStagedPayload struct {
	Root string
	Path string
}

// RepoBusyPayload is emitted when a reconciliation cycle is abandoned
// because the repository's lock markers persisted past the retry budget.
type RepoBusyPayload struct {
	Root     string
	Attempts int
}

// NotificationPublishedPayload carries a user-facing notification.
type NotificationPublishedPayload struct {
	Level   notify.Level
	Message string
}
