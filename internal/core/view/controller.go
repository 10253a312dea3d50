// Package view owns the lifecycle of the diff view: visibility,
// surface population, staging, and the lock-retry discipline around
// external change signals.
package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/internal/core/eventbus"
	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/core/logging"
	"github.com/colonyops/diffwatch/internal/core/notify"
)

// Renderer is the rendering collaborator. The controller treats these
// as opaque operations and never depends on how surfaces are drawn.
type Renderer interface {
	// Apply replaces the rendered surface set. Implementations build the
	// new view before discarding the old one so a refresh never passes
	// through an observable empty state.
	Apply(surfaces []*Surface)
	// Update swaps a regenerated surface in for the rendered one bound
	// to the same path.
	Update(surface *Surface)
	// Clear detaches every surface when the view hides.
	Clear()
}

// Scheduler defers fn by d. Injectable so tests drive retry ticks
// synchronously.
type Scheduler func(d time.Duration, fn func())

// Options configures a Controller.
type Options struct {
	StartDir string
	// AutoOpen makes an external change signal open a hidden view.
	AutoOpen bool
	// Ignore holds doublestar patterns filtered out of classification.
	Ignore        []string
	RetryDelay    time.Duration
	RetryAttempts int
	Scheduler     Scheduler
}

// Controller is the state machine over {Hidden, Visible}. One instance
// owns one session; all methods are serialized by an internal mutex so
// at most one reconciliation is in flight.
type Controller struct {
	mu       sync.Mutex
	probe    git.Probe
	synth    *diff.Synthesizer
	bus      *eventbus.EventBus
	renderer Renderer
	opts     Options
	log      zerolog.Logger

	state   State
	session Session

	enabled bool
	// pendingSignal coalesces change signals arriving while a retry
	// chain is underway; signals arriving mid-reconciliation serialize
	// behind the mutex, which gives the same "one more afterwards"
	// semantics.
	pendingSignal bool
	retryActive   bool
}

// NewController creates an enabled controller in the Hidden state.
func NewController(probe git.Probe, synth *diff.Synthesizer, bus *eventbus.EventBus, renderer Renderer, opts Options) *Controller {
	if opts.RetryAttempts <= 0 {
		opts.RetryAttempts = 5
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 150 * time.Millisecond
	}
	if opts.Scheduler == nil {
		opts.Scheduler = func(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
	}
	if opts.StartDir == "" {
		opts.StartDir = "."
	}
	return &Controller{
		probe:    probe,
		synth:    synth,
		bus:      bus,
		renderer: renderer,
		opts:     opts,
		log:      logging.Component("view"),
		enabled:  true,
	}
}

// State returns the current visibility.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Session{Root: c.session.Root}
	snap.Surfaces = append(snap.Surfaces, c.session.Surfaces...)
	return snap
}

// Disable stops the controller: pending retry ticks abort at their
// next check and new signals are ignored.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// Toggle shows the view when hidden and hides it when visible.
func (c *Controller) Toggle(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Visible {
		c.hideLocked()
		return nil
	}
	return c.showLocked(ctx)
}

// Show transitions Hidden -> Visible, populating surfaces. No-op when
// already visible.
func (c *Controller) Show(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Visible {
		return nil
	}
	return c.showLocked(ctx)
}

// Hide transitions Visible -> Hidden, releasing every surface.
func (c *Controller) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Visible {
		c.hideLocked()
	}
}

// Refresh repopulates the view from current repository state. When the
// view is hidden it behaves like Show.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Hidden {
		return c.showLocked(ctx)
	}
	if c.probe.LocksHeld(c.session.Root) {
		c.notify(notify.LevelWarning, ErrRepositoryBusy.Error())
		return ErrRepositoryBusy
	}
	return c.reconcileLocked(ctx)
}

// StageFile stages exactly one path and refreshes on success. On
// failure the view is left byte-for-byte unchanged.
func (c *Controller) StageFile(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	root := c.session.Root
	if root == "" {
		var ok bool
		root, ok = c.probe.ResolveRoot(c.opts.StartDir)
		if !ok {
			c.notify(notify.LevelError, "not in a git repository")
			return ErrNotARepository
		}
	}

	if err := c.probe.Stage(ctx, root, path); err != nil {
		serr := &StageError{Path: path, Err: err}
		c.notify(notify.LevelError, serr.Error())
		return serr
	}

	if c.bus != nil {
		c.bus.PublishFileStaged(eventbus.FileStagedPayload{Root: root, Path: path})
	}

	if c.state == Visible {
		return c.reconcileLocked(ctx)
	}
	return nil
}

// ToggleFull flips one surface's full-context mode and regenerates
// only that surface's text. The regenerated content is swapped in as a
// replacement surface; applied surfaces are never written to after the
// renderer has seen them.
func (c *Controller) ToggleFull(ctx context.Context, path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, surf := range c.session.Surfaces {
		if !surf.Info && surf.Entry.Path == path {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("no surface for %s", path)
	}
	prev := c.session.Surfaces[idx]

	lines, err := c.synth.Lines(ctx, c.session.Root, prev.Entry, !prev.FullMode)
	if err != nil {
		c.notify(notify.LevelError, err.Error())
		return err
	}

	next := &Surface{
		Entry:    prev.Entry,
		FullMode: !prev.FullMode,
		Lines:    lines,
	}
	next.Additions, next.Deletions = diff.Count(lines)
	c.session.Surfaces[idx] = next
	c.renderer.Update(next)
	return nil
}

// OnHeadChange handles an external notification that the repository's
// head reference changed. Signals are coalesced per root: while a
// reconciliation or retry chain is underway, at most one follow-up
// reconciliation is remembered.
func (c *Controller) OnHeadChange(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.enabled {
		return
	}
	if c.state == Hidden && !c.opts.AutoOpen {
		return
	}
	if c.retryActive {
		c.pendingSignal = true
		return
	}

	c.retryLocked(ctx, 1)
}

// retryLocked checks for lock markers before touching the repository.
// While markers are present it reschedules itself up to the attempt
// budget, then abandons the cycle with a busy diagnostic. classify is
// never called while markers persist.
func (c *Controller) retryLocked(ctx context.Context, attempt int) {
	root := c.session.Root
	if root == "" {
		var ok bool
		root, ok = c.probe.ResolveRoot(c.opts.StartDir)
		if !ok {
			c.notify(notify.LevelError, "not in a git repository")
			return
		}
	}

	if !c.probe.LocksHeld(root) {
		c.retryActive = false
		if c.state == Hidden {
			if err := c.showLocked(ctx); err != nil {
				c.log.Warn().Err(err).Msg("auto-open after head change failed")
			}
		} else if err := c.reconcileLocked(ctx); err != nil {
			c.log.Warn().Err(err).Msg("reconcile after head change failed")
		}
		c.drainPendingLocked(ctx)
		return
	}

	if attempt >= c.opts.RetryAttempts {
		c.retryActive = false
		c.pendingSignal = false
		c.log.Warn().Str("root", root).Int("attempts", attempt).Msg("abandoning refresh: repository busy")
		c.notify(notify.LevelWarning, "repository busy, refresh abandoned")
		if c.bus != nil {
			c.bus.PublishRepoBusy(eventbus.RepoBusyPayload{Root: root, Attempts: attempt})
		}
		return
	}

	c.retryActive = true
	c.opts.Scheduler(c.opts.RetryDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if !c.enabled {
			c.retryActive = false
			return
		}
		c.retryLocked(ctx, attempt+1)
	})
}

func (c *Controller) drainPendingLocked(ctx context.Context) {
	if !c.pendingSignal {
		return
	}
	c.pendingSignal = false
	c.retryLocked(ctx, 1)
}

func (c *Controller) showLocked(ctx context.Context) error {
	root, ok := c.probe.ResolveRoot(c.opts.StartDir)
	if !ok {
		c.notify(notify.LevelError, "not in a git repository")
		return ErrNotARepository
	}

	c.session.Root = root
	if err := c.reconcileLocked(ctx); err != nil {
		c.session = Session{}
		return err
	}

	c.state = Visible
	return nil
}

func (c *Controller) hideLocked() {
	c.renderer.Clear()
	c.session = Session{}
	c.state = Hidden
	c.log.Debug().Msg("view hidden")
}

// reconcileLocked is one full classify + synthesize + repopulate pass.
// Per-file synthesis failures are isolated to that file's surface;
// only a status-query failure aborts the pass.
func (c *Controller) reconcileLocked(ctx context.Context) error {
	root := c.session.Root

	statusLines, err := c.probe.Status(ctx, root)
	if err != nil {
		qerr := &QueryError{Op: "status", Err: err}
		c.notify(notify.LevelError, qerr.Error())
		return qerr
	}

	entries := FilterIgnored(git.Classify(statusLines), c.opts.Ignore)

	var surfaces []*Surface
	if len(entries) == 0 {
		surfaces = []*Surface{{
			Info:  true,
			Lines: []string{"no unstaged changes"},
		}}
	} else {
		prior := c.session
		for _, entry := range entries {
			surfaces = append(surfaces, c.buildSurface(ctx, root, entry, &prior))
		}
	}

	// new surfaces are fully built before the old set is replaced, so
	// the view never shows an intermediate empty state
	c.session.Surfaces = surfaces
	c.renderer.Apply(surfaces)

	if c.bus != nil {
		n := len(surfaces)
		if len(entries) == 0 {
			n = 0
		}
		c.bus.PublishViewRefreshed(eventbus.ViewRefreshedPayload{Root: root, Surfaces: n})
	}

	c.log.Debug().Str("root", root).Int("surfaces", len(surfaces)).Msg("view reconciled")
	return nil
}

// buildSurface synthesizes one surface. When the diff query fails for a
// modified file, the prior surface's content is kept (with its mode)
// rather than fabricating an empty diff; if no prior surface exists,
// the failure itself becomes the body.
func (c *Controller) buildSurface(ctx context.Context, root string, entry git.ChangeEntry, prior *Session) *Surface {
	lines, err := c.synth.Lines(ctx, root, entry, false)
	if err != nil {
		c.notify(notify.LevelWarning, err.Error())
		if old := prior.SurfaceFor(entry.Path); old != nil {
			return &Surface{
				Entry:     entry,
				FullMode:  old.FullMode,
				Lines:     old.Lines,
				Additions: old.Additions,
				Deletions: old.Deletions,
			}
		}
		return &Surface{
			Entry: entry,
			Lines: []string{fmt.Sprintf("diff unavailable for %s", entry.Path)},
		}
	}

	s := &Surface{Entry: entry, Lines: lines}
	s.Additions, s.Deletions = diff.Count(lines)
	return s
}

// FilterIgnored drops entries whose path matches any of the doublestar
// patterns. Invalid patterns never match.
func FilterIgnored(entries []git.ChangeEntry, patterns []string) []git.ChangeEntry {
	if len(patterns) == 0 {
		return entries
	}

	out := entries[:0]
	for _, e := range entries {
		ignored := false
		for _, pattern := range patterns {
			if ok, err := doublestar.Match(pattern, e.Path); err == nil && ok {
				ignored = true
				break
			}
		}
		if !ignored {
			out = append(out, e)
		}
	}
	return out
}

func (c *Controller) notify(level notify.Level, msg string) {
	c.log.Warn().Str("level", string(level)).Msg(msg)
	if c.bus != nil {
		c.bus.PublishNotificationPublished(eventbus.NotificationPublishedPayload{
			Level:   level,
			Message: msg,
		})
	}
}
