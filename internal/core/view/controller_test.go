package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/internal/core/git"
)

// fakeProbe scripts every probe response.
type fakeProbe struct {
	root        string
	rootOK      bool
	statusLines []string
	statusErr   error
	statusCalls int
	worktree    map[string][]string
	blobs       map[string][]string
	diffs       map[string][]string
	diffErrs    map[string]error
	stageErr    error
	staged      []string
	locked      bool
	lockChecks  int
}

func (f *fakeProbe) ResolveRoot(string) (string, bool) { return f.root, f.rootOK }

func (f *fakeProbe) Status(context.Context, string) ([]string, error) {
	f.statusCalls++
	return f.statusLines, f.statusErr
}

func (f *fakeProbe) DiffFile(_ context.Context, _ string, path string, _ int) ([]string, error) {
	if err := f.diffErrs[path]; err != nil {
		return nil, err
	}
	return f.diffs[path], nil
}

func (f *fakeProbe) ShowBlob(_ context.Context, _ string, path string) ([]string, bool) {
	lines, ok := f.blobs[path]
	return lines, ok
}

func (f *fakeProbe) Stage(_ context.Context, _ string, path string) error {
	if f.stageErr != nil {
		return f.stageErr
	}
	f.staged = append(f.staged, path)
	return nil
}

func (f *fakeProbe) ReadWorktreeFile(_ string, path string) ([]string, bool) {
	lines, ok := f.worktree[path]
	return lines, ok
}

func (f *fakeProbe) HeadRef(string) (string, bool) { return "ref: refs/heads/main", true }

func (f *fakeProbe) LocksHeld(string) bool {
	f.lockChecks++
	return f.locked
}

// fakeRenderer records renderer calls.
type fakeRenderer struct {
	applied [][]*Surface
	updated []*Surface
	cleared int
}

func (r *fakeRenderer) Apply(surfaces []*Surface) {
	r.applied = append(r.applied, surfaces)
}

func (r *fakeRenderer) Update(s *Surface) { r.updated = append(r.updated, s) }

func (r *fakeRenderer) Clear() { r.cleared++ }

// syncScheduler collects deferred funcs so tests drive ticks manually.
type syncScheduler struct {
	ticks []func()
}

func (s *syncScheduler) schedule(_ time.Duration, fn func()) { s.ticks = append(s.ticks, fn) }

// runAll drains the tick queue, including ticks scheduled by ticks.
func (s *syncScheduler) runAll() {
	for len(s.ticks) > 0 {
		tick := s.ticks[0]
		s.ticks = s.ticks[1:]
		tick()
	}
}

func newTestController(probe *fakeProbe, opts Options) (*Controller, *fakeRenderer) {
	renderer := &fakeRenderer{}
	synth := diff.NewSynthesizer(probe, 0)
	return NewController(probe, synth, nil, renderer, opts), renderer
}

func TestShowNotARepository(t *testing.T) {
	probe := &fakeProbe{rootOK: false}
	c, renderer := newTestController(probe, Options{})

	err := c.Show(context.Background())
	assert.ErrorIs(t, err, ErrNotARepository)
	assert.Equal(t, Hidden, c.State())
	assert.Empty(t, renderer.applied)
}

func TestShowPopulatesSurfaces(t *testing.T) {
	probe := &fakeProbe{
		root:   "/repo",
		rootOK: true,
		statusLines: []string{
			"?? new.txt",
			" M changed.txt",
			" D removed.txt",
		},
		worktree: map[string][]string{"new.txt": {"hello"}},
		blobs:    map[string][]string{"removed.txt": {"bye"}},
		diffs: map[string][]string{"changed.txt": {
			"diff --git a/changed.txt b/changed.txt",
			"--- a/changed.txt",
			"+++ b/changed.txt",
			"@@ -1 +1 @@",
			"-x",
			"+y",
		}},
	}
	c, renderer := newTestController(probe, Options{})

	require.NoError(t, c.Show(context.Background()))
	assert.Equal(t, Visible, c.State())

	sess := c.Session()
	assert.Equal(t, "/repo", sess.Root)
	require.Len(t, sess.Surfaces, 3)
	assert.Equal(t, "new.txt", sess.Surfaces[0].Entry.Path)
	assert.Equal(t, git.KindNew, sess.Surfaces[0].Entry.Kind)
	assert.Equal(t, "changed.txt", sess.Surfaces[1].Entry.Path)
	assert.Equal(t, "removed.txt", sess.Surfaces[2].Entry.Path)

	require.Len(t, renderer.applied, 1)
	assert.Len(t, renderer.applied[0], 3)

	assert.Equal(t, 1, sess.Surfaces[0].Additions)
	assert.Equal(t, 1, sess.Surfaces[2].Deletions)
}

func TestShowZeroEntriesCreatesInfoSurface(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true}
	c, renderer := newTestController(probe, Options{})

	require.NoError(t, c.Show(context.Background()))
	assert.Equal(t, Visible, c.State())

	sess := c.Session()
	require.Len(t, sess.Surfaces, 1, "exactly one informational surface, never zero")
	assert.True(t, sess.Surfaces[0].Info)
	assert.Equal(t, []string{"no unstaged changes"}, sess.Surfaces[0].Lines)
	require.Len(t, renderer.applied, 1)
}

func TestToggleHideClearsSession(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true, statusLines: []string{"?? a.txt"},
		worktree: map[string][]string{"a.txt": {"x"}}}
	c, renderer := newTestController(probe, Options{})

	require.NoError(t, c.Toggle(context.Background()))
	assert.Equal(t, Visible, c.State())

	require.NoError(t, c.Toggle(context.Background()))
	assert.Equal(t, Hidden, c.State())
	assert.Equal(t, 1, renderer.cleared)
	assert.Empty(t, c.Session().Surfaces, "bookkeeping cleared on hide")
}

func TestStatusQueryFailureAbortsReconciliation(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true, statusErr: errors.New("exit 128")}
	c, renderer := newTestController(probe, Options{})

	err := c.Show(context.Background())
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, Hidden, c.State())
	assert.Empty(t, renderer.applied)
}

func TestPerFileFailureIsolated(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{" M broken.txt", "?? fine.txt"},
		diffErrs:    map[string]error{"broken.txt": errors.New("exit 128")},
		worktree:    map[string][]string{"fine.txt": {"ok"}},
	}
	c, _ := newTestController(probe, Options{})

	require.NoError(t, c.Show(context.Background()), "one broken file never aborts siblings")

	sess := c.Session()
	require.Len(t, sess.Surfaces, 2)
	assert.Contains(t, sess.Surfaces[0].Lines[0], "diff unavailable")
	assert.Equal(t, "+ok", sess.Surfaces[1].Lines[len(sess.Surfaces[1].Lines)-1])
}

func TestPerFileFailureKeepsPriorContent(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{" M flaky.txt"},
		diffs: map[string][]string{"flaky.txt": {
			"diff --git a/flaky.txt b/flaky.txt",
			"@@ -1 +1 @@",
			"-a",
			"+b",
		}},
	}
	c, _ := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))
	before := c.Session().Surfaces[0].Lines

	probe.diffErrs = map[string]error{"flaky.txt": errors.New("exit 128")}
	require.NoError(t, c.Refresh(context.Background()))

	after := c.Session().Surfaces[0].Lines
	assert.Equal(t, before, after, "prior content kept when the diff query fails")
}

func TestStageFailureLeavesViewUntouched(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	c, renderer := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))

	before := c.Session()
	applies := len(renderer.applied)

	probe.stageErr = errors.New("index locked")
	err := c.StageFile(context.Background(), "a.txt")

	var serr *StageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "a.txt", serr.Path)

	after := c.Session()
	assert.Equal(t, before.Surfaces, after.Surfaces, "no refresh on stage failure")
	assert.Equal(t, applies, len(renderer.applied))
	assert.Equal(t, Visible, c.State())
}

func TestStageSuccessRefreshes(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	c, renderer := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))

	// after staging, the path no longer shows as unstaged
	probe.statusLines = nil
	require.NoError(t, c.StageFile(context.Background(), "a.txt"))

	assert.Equal(t, []string{"a.txt"}, probe.staged)
	require.Len(t, renderer.applied, 2)
	sess := c.Session()
	require.Len(t, sess.Surfaces, 1)
	assert.True(t, sess.Surfaces[0].Info)
}

func TestToggleFullRegeneratesOneSurface(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt", "?? b.txt"},
		worktree: map[string][]string{
			"a.txt": {"one", "two"},
			"b.txt": {"three"},
		},
	}
	c, renderer := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))

	headered := c.Session().Surfaces[0].Lines
	siblingBefore := c.Session().Surfaces[1].Lines

	require.NoError(t, c.ToggleFull(context.Background(), "a.txt"))

	surf := c.Session().SurfaceFor("a.txt")
	require.NotNil(t, surf)
	assert.True(t, surf.FullMode)
	assert.Equal(t, []string{"+one", "+two"}, surf.Lines)
	assert.Equal(t, siblingBefore, c.Session().Surfaces[1].Lines, "siblings unaffected")
	require.Len(t, renderer.updated, 1)
	assert.Len(t, renderer.applied, 1, "no full repopulation for a mode toggle")

	// toggling back returns byte-identical content
	require.NoError(t, c.ToggleFull(context.Background(), "a.txt"))
	assert.False(t, c.Session().SurfaceFor("a.txt").FullMode)
	assert.Equal(t, headered, c.Session().SurfaceFor("a.txt").Lines)
}

func TestToggleFullDoesNotMutateAppliedSurface(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"one", "two"}},
	}
	c, renderer := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))

	applied := renderer.applied[0][0]
	appliedLines := append([]string(nil), applied.Lines...)

	require.NoError(t, c.ToggleFull(context.Background(), "a.txt"))

	// the surface handed out at apply time keeps its content; the
	// regenerated one arrives as a distinct replacement
	assert.False(t, applied.FullMode)
	assert.Equal(t, appliedLines, applied.Lines)
	require.Len(t, renderer.updated, 1)
	assert.NotSame(t, applied, renderer.updated[0])
	assert.Same(t, c.Session().SurfaceFor("a.txt"), renderer.updated[0])
}

func TestOnHeadChangeReconciles(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	sched := &syncScheduler{}
	c, renderer := newTestController(probe, Options{Scheduler: sched.schedule})
	require.NoError(t, c.Show(context.Background()))

	c.OnHeadChange(context.Background())
	assert.Len(t, renderer.applied, 2)
	assert.Empty(t, sched.ticks, "no retry when no locks held")
}

func TestOnHeadChangeIgnoredWhenHidden(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true}
	c, renderer := newTestController(probe, Options{})

	c.OnHeadChange(context.Background())
	assert.Empty(t, renderer.applied)
	assert.Equal(t, 0, probe.statusCalls)
}

func TestOnHeadChangeAutoOpen(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true}
	c, _ := newTestController(probe, Options{AutoOpen: true})

	c.OnHeadChange(context.Background())
	assert.Equal(t, Visible, c.State())
}

func TestLockRetryExhaustionNeverClassifies(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	sched := &syncScheduler{}
	c, renderer := newTestController(probe, Options{
		Scheduler:     sched.schedule,
		RetryAttempts: 3,
	})
	require.NoError(t, c.Show(context.Background()))
	statusCallsBefore := probe.statusCalls

	probe.locked = true
	c.OnHeadChange(context.Background())
	sched.runAll()

	assert.Equal(t, 3, probe.lockChecks, "every attempt checks the lock markers")
	assert.Equal(t, statusCallsBefore, probe.statusCalls, "classify never runs while busy")
	assert.Len(t, renderer.applied, 1, "prior view content left as-is")
	assert.Equal(t, Visible, c.State(), "busy does not mark the view unusable")
}

func TestLockRetrySucceedsWhenLockReleases(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	sched := &syncScheduler{}
	c, renderer := newTestController(probe, Options{Scheduler: sched.schedule, RetryAttempts: 5})
	require.NoError(t, c.Show(context.Background()))

	probe.locked = true
	c.OnHeadChange(context.Background())
	require.Len(t, sched.ticks, 1)

	probe.locked = false
	sched.runAll()

	assert.Len(t, renderer.applied, 2, "reconciles once the lock releases")
}

func TestHeadChangeSignalsCoalesce(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	sched := &syncScheduler{}
	c, renderer := newTestController(probe, Options{Scheduler: sched.schedule, RetryAttempts: 5})
	require.NoError(t, c.Show(context.Background()))

	probe.locked = true
	c.OnHeadChange(context.Background())
	c.OnHeadChange(context.Background())
	c.OnHeadChange(context.Background())
	require.Len(t, sched.ticks, 1, "signals while retrying coalesce to one pending chain")

	probe.locked = false
	sched.runAll()

	// one reconciliation for the retry chain plus one for the single
	// coalesced pending signal
	assert.Len(t, renderer.applied, 3)
}

func TestDisableAbortsRetryChain(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	sched := &syncScheduler{}
	c, renderer := newTestController(probe, Options{Scheduler: sched.schedule, RetryAttempts: 5})
	require.NoError(t, c.Show(context.Background()))

	probe.locked = true
	c.OnHeadChange(context.Background())
	require.Len(t, sched.ticks, 1)

	c.Disable()
	probe.locked = false
	sched.runAll()

	assert.Len(t, renderer.applied, 1, "disabled controller stops scheduling further ticks")

	c.OnHeadChange(context.Background())
	assert.Len(t, renderer.applied, 1, "disabled controller ignores new signals")
}

func TestIgnorePatternsFilterEntries(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? vendor/dep/a.go", "?? keep.txt", " M sub/pkg.lock"},
		worktree:    map[string][]string{"keep.txt": {"x"}},
	}
	c, _ := newTestController(probe, Options{Ignore: []string{"vendor/**", "**/*.lock"}})
	require.NoError(t, c.Show(context.Background()))

	sess := c.Session()
	require.Len(t, sess.Surfaces, 1)
	assert.Equal(t, "keep.txt", sess.Surfaces[0].Entry.Path)
}

func TestRefreshWhileLockedReturnsBusy(t *testing.T) {
	probe := &fakeProbe{
		root:        "/repo",
		rootOK:      true,
		statusLines: []string{"?? a.txt"},
		worktree:    map[string][]string{"a.txt": {"x"}},
	}
	c, renderer := newTestController(probe, Options{})
	require.NoError(t, c.Show(context.Background()))

	probe.locked = true
	err := c.Refresh(context.Background())

	assert.ErrorIs(t, err, ErrRepositoryBusy)
	assert.Len(t, renderer.applied, 1, "no reconciliation against a mid-operation repository")
}

func TestRefreshWhenHiddenShows(t *testing.T) {
	probe := &fakeProbe{root: "/repo", rootOK: true}
	c, _ := newTestController(probe, Options{})

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, Visible, c.State())
}
