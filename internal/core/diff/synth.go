// Package diff constructs the text representation shown for each
// classified file: delegated unified diffs for modified files and
// synthesized diffs for wholly new or deleted ones.
package diff

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/core/logging"
)

// DefaultFullContext is the -U value used in full-context mode. Large
// enough to force any realistic file into a single hunk.
const DefaultFullContext = 999999

// Synthesizer produces diff text for classified entries. Results are
// immutable; a mode switch regenerates rather than patches.
type Synthesizer struct {
	probe       git.Probe
	fullContext int
	log         zerolog.Logger
}

// NewSynthesizer creates a synthesizer. fullContext <= 0 selects
// DefaultFullContext.
func NewSynthesizer(probe git.Probe, fullContext int) *Synthesizer {
	if fullContext <= 0 {
		fullContext = DefaultFullContext
	}
	return &Synthesizer{
		probe:       probe,
		fullContext: fullContext,
		log:         logging.Component("diff"),
	}
}

// Lines returns the diff text for one entry, one line per element.
// When full is true, metadata headers are stripped from the result.
// The only error case is a failed diff query for a modified file;
// every other degradation yields a diagnostic or placeholder body so
// callers can treat all strategies uniformly.
func (s *Synthesizer) Lines(ctx context.Context, root string, entry git.ChangeEntry, full bool) ([]string, error) {
	var (
		body []string
		err  error
	)

	switch entry.Kind {
	case git.KindNew:
		body = s.newFile(root, entry.Path)
	case git.KindDeleted:
		body = s.deletedFile(ctx, root, entry.Path)
	default:
		body, err = s.modifiedFile(ctx, root, entry.Path, full)
		if err != nil {
			return nil, err
		}
	}

	if full {
		body = StripHeaders(body)
	}
	return body, nil
}

func (s *Synthesizer) modifiedFile(ctx context.Context, root, path string, full bool) ([]string, error) {
	contextLines := 0
	if full {
		contextLines = s.fullContext
	}

	lines, err := s.probe.DiffFile(ctx, root, path, contextLines)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("diff unavailable")
		return nil, fmt.Errorf("diff unavailable for %s: %w", path, err)
	}

	// status reported the path but the diff is empty, e.g. a
	// mode-only change
	if len(lines) == 0 {
		return []string{fmt.Sprintf("no textual changes for %s", path)}, nil
	}
	return lines, nil
}

func (s *Synthesizer) newFile(root, path string) []string {
	content, ok := s.probe.ReadWorktreeFile(root, path)
	if !ok {
		return diagnosticBlock(path, "unable to read worktree file")
	}

	lines := make([]string, 0, len(content)+5)
	lines = append(lines,
		headerLine(path),
		"new file mode 100644",
		"--- /dev/null",
		"+++ b/"+path,
		hunkHeader(0, 0, 1, len(content)),
	)
	for _, l := range content {
		lines = append(lines, "+"+l)
	}
	return lines
}

func (s *Synthesizer) deletedFile(ctx context.Context, root, path string) []string {
	content, ok := s.probe.ShowBlob(ctx, root, path)
	if !ok {
		return diagnosticBlock(path, "unable to read committed content")
	}

	lines := make([]string, 0, len(content)+5)
	lines = append(lines,
		headerLine(path),
		"deleted file mode 100644",
		"--- a/"+path,
		"+++ /dev/null",
		hunkHeader(1, len(content), 0, 0),
	)
	for _, l := range content {
		lines = append(lines, "-"+l)
	}
	return lines
}

func headerLine(path string) string {
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// hunkHeader formats the single hunk covering a wholly new or deleted
// file. Start line is always 0 for the absent side; a zero-length file
// collapses to the zero sentinel on both sides.
func hunkHeader(oldStart, oldCount, newStart, newCount int) string {
	if oldCount == 0 && newCount == 0 {
		return "@@ -0,0 +0,0 @@"
	}
	if oldCount == 0 {
		return fmt.Sprintf("@@ -0,0 +%d,%d @@", newStart, newCount)
	}
	return fmt.Sprintf("@@ -%d,%d +0,0 @@", oldStart, oldCount)
}

// diagnosticBlock is the two-line body shown when a file's content
// cannot be read: a git-style header plus an explanatory line, so one
// broken file never fails the whole view.
func diagnosticBlock(path, reason string) []string {
	return []string{
		headerLine(path),
		fmt.Sprintf("diffwatch: %s: %s", reason, path),
	}
}
