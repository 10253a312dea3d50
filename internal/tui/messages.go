package tui

import (
	"github.com/colonyops/diffwatch/internal/core/notify"
	"github.com/colonyops/diffwatch/internal/core/view"
)

// surfacesAppliedMsg replaces the full surface set after a
// reconciliation.
type surfacesAppliedMsg struct {
	surfaces []*view.Surface
}

// surfaceUpdatedMsg carries the regenerated replacement for one
// surface after a full-context toggle.
type surfaceUpdatedMsg struct {
	surface *view.Surface
}

// viewClearedMsg is sent when the controller hides the view.
type viewClearedMsg struct{}

// noticeMsg carries one user-facing notification into the status bar.
type noticeMsg struct {
	notification notify.Notification
}

// opErrMsg reports a failed controller operation.
type opErrMsg struct {
	err error
}
