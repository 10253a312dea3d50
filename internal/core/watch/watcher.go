// Package watch detects head-reference changes for one repository and
// feeds the view controller's change-signal entry point. fsnotify on
// the repository metadata directory is preferred; when a watcher
// cannot be created it degrades to interval polling of the marker
// file's content.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/colonyops/diffwatch/internal/core/eventbus"
	"github.com/colonyops/diffwatch/internal/core/logging"
)

const (
	headFile        = "HEAD"
	defaultDebounce = 100 * time.Millisecond
	defaultPoll     = 2 * time.Second
)

// Options configures a HeadWatcher.
type Options struct {
	// Debounce collapses bursts of filesystem events into one signal.
	Debounce time.Duration
	// PollInterval is the fallback polling cadence.
	PollInterval time.Duration
}

// HeadWatcher watches one repository root for head-reference changes.
// Each change fires the OnChange callback and publishes a head.changed
// event; bursts within the debounce window coalesce to one signal.
type HeadWatcher struct {
	root     string
	gitDir   string
	headPath string
	bus      *eventbus.EventBus
	onChange func(context.Context)
	opts     Options
	log      zerolog.Logger

	watcher *fsnotify.Watcher // nil in polling mode

	mu       sync.Mutex
	debounce *time.Timer
	lastHead string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHeadWatcher starts watching root's metadata directory. onChange
// runs on the watcher's goroutine after each debounced change. When
// fsnotify is unavailable the watcher silently runs in polling mode.
func NewHeadWatcher(root string, bus *eventbus.EventBus, onChange func(context.Context), opts Options) (*HeadWatcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounce
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPoll
	}

	gitDir := filepath.Join(root, ".git")
	if info, err := os.Stat(gitDir); err != nil || !info.IsDir() {
		return nil, &NotWatchableError{Root: root, Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &HeadWatcher{
		root:     root,
		gitDir:   gitDir,
		headPath: filepath.Join(gitDir, headFile),
		bus:      bus,
		onChange: onChange,
		opts:     opts,
		log:      logging.Component("watch"),
		ctx:      ctx,
		cancel:   cancel,
	}
	w.lastHead = w.readHead()

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = watcher.Add(gitDir)
		if err != nil {
			_ = watcher.Close()
		}
	}
	if err != nil {
		w.log.Warn().Err(err).Str("root", root).Msg("fsnotify unavailable, falling back to polling")
	} else {
		w.watcher = watcher
	}

	w.wg.Add(1)
	if w.watcher != nil {
		go w.runEvents()
	} else {
		go w.runPolling()
	}

	return w, nil
}

// Polling reports whether the watcher runs in fallback polling mode.
func (w *HeadWatcher) Polling() bool { return w.watcher == nil }

// Close stops the watcher and waits for its goroutine to exit.
func (w *HeadWatcher) Close() error {
	w.cancel()

	w.mu.Lock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.mu.Unlock()

	var err error
	if w.watcher != nil {
		err = w.watcher.Close()
	}
	w.wg.Wait()
	return err
}

func (w *HeadWatcher) runEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case werr, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(werr).Msg("watch error")
		}
	}
}

// handleEvent filters metadata-dir events down to the head marker
// file. git replaces HEAD atomically via rename, so create and rename
// events matter as much as writes.
func (w *HeadWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(event.Name) != headFile {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.opts.Debounce, w.fire)
}

func (w *HeadWatcher) runPolling() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			if w.pollOnce() {
				w.fire()
			}
		}
	}
}

// pollOnce re-reads the marker file and reports whether its content
// changed since the last observation.
func (w *HeadWatcher) pollOnce() bool {
	head := w.readHead()

	w.mu.Lock()
	defer w.mu.Unlock()
	if head == w.lastHead {
		return false
	}
	w.lastHead = head
	return true
}

func (w *HeadWatcher) readHead() string {
	content, err := os.ReadFile(w.headPath)
	if err != nil {
		return ""
	}
	return string(content)
}

func (w *HeadWatcher) fire() {
	select {
	case <-w.ctx.Done():
		return
	default:
	}

	w.log.Debug().Str("root", w.root).Msg("head changed")
	if w.bus != nil {
		w.bus.PublishHeadChanged(eventbus.HeadChangedPayload{Root: w.root})
	}
	if w.onChange != nil {
		w.onChange(w.ctx)
	}
}
