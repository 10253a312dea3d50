package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/colonyops/diffwatch/internal/core/logging"
	"github.com/colonyops/diffwatch/pkg/executil"
)

// lockMarkers are the sentinel files git creates while mutating
// repository metadata. Their presence means reads may see a
// mid-operation state.
var lockMarkers = []string{
	"index.lock",
	"HEAD.lock",
	filepath.Join("refs", "heads.lock"),
}

// CLIProbe implements Probe using the git command-line tool.
type CLIProbe struct {
	gitPath string
	exec    executil.Executor
	log     zerolog.Logger
}

// NewCLIProbe creates a probe backed by the git binary at gitPath.
func NewCLIProbe(gitPath string, exec executil.Executor) *CLIProbe {
	return &CLIProbe{
		gitPath: gitPath,
		exec:    exec,
		log:     logging.Component("git"),
	}
}

// ResolveRoot walks parent directories from startDir until a .git
// directory is found. Pure function of the filesystem at call time;
// no caching.
func (p *CLIProbe) ResolveRoot(startDir string) (string, bool) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		p.log.Debug().Err(err).Str("dir", startDir).Msg("resolve root: abs failed")
		return "", false
	}

	for {
		info, err := os.Stat(filepath.Join(dir, ".git"))
		if err == nil && info.IsDir() {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// query runs git scoped to root. The -C override pins the effective
// working directory regardless of process cwd.
func (p *CLIProbe) query(ctx context.Context, root string, args ...string) ([]string, error) {
	full := append([]string{"-C", root}, args...)
	out, err := p.exec.Run(ctx, p.gitPath, full...)
	if err != nil {
		return splitLines(string(out)), err
	}
	return splitLines(string(out)), nil
}

// Status returns porcelain short-format status lines.
func (p *CLIProbe) Status(ctx context.Context, root string) ([]string, error) {
	lines, err := p.query(ctx, root, "status", "--porcelain")
	if err != nil {
		p.log.Warn().Err(err).Str("root", root).Msg("status query failed")
		return nil, fmt.Errorf("git status: %w", err)
	}
	return lines, nil
}

// DiffFile returns the unified diff for one path, uncolored. When
// contextLines > 0 the context window is widened before the path
// filter so a single hunk can cover the whole file.
func (p *CLIProbe) DiffFile(ctx context.Context, root, path string, contextLines int) ([]string, error) {
	args := []string{"diff", "--no-color"}
	if contextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", contextLines))
	}
	args = append(args, "--", path)

	lines, err := p.query(ctx, root, args...)
	if err != nil {
		p.log.Warn().Err(err).Str("root", root).Str("path", path).Msg("diff query failed")
		return nil, fmt.Errorf("git diff %s: %w", path, err)
	}
	return lines, nil
}

// ShowBlob reads path's content as recorded at the current head.
func (p *CLIProbe) ShowBlob(ctx context.Context, root, path string) ([]string, bool) {
	lines, err := p.query(ctx, root, "show", "HEAD:"+path)
	if err != nil {
		p.log.Debug().Err(err).Str("root", root).Str("path", path).Msg("show blob failed")
		return nil, false
	}
	return lines, true
}

// Stage adds exactly one path to the index. The working tree file
// content is not touched.
func (p *CLIProbe) Stage(ctx context.Context, root, path string) error {
	if _, err := p.query(ctx, root, "add", "--", path); err != nil {
		p.log.Warn().Err(err).Str("root", root).Str("path", path).Msg("stage failed")
		return fmt.Errorf("git add %s: %w", path, err)
	}
	return nil
}

// ReadWorktreeFile returns the on-disk lines for a worktree-relative path.
func (p *CLIProbe) ReadWorktreeFile(root, path string) ([]string, bool) {
	data, err := os.ReadFile(filepath.Join(root, path))
	if err != nil {
		p.log.Debug().Err(err).Str("root", root).Str("path", path).Msg("read worktree file failed")
		return nil, false
	}
	return splitLines(string(data)), true
}

// HeadRef returns the raw content of .git/HEAD.
func (p *CLIProbe) HeadRef(root string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(root, ".git", "HEAD"))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// LocksHeld reports whether any of git's lock markers are present.
func (p *CLIProbe) LocksHeld(root string) bool {
	for _, marker := range lockMarkers {
		if _, err := os.Stat(filepath.Join(root, ".git", marker)); err == nil {
			return true
		}
	}
	return false
}

// splitLines splits command or file output into lines, one element per
// line. A single trailing newline does not produce a trailing empty
// element; empty input yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
