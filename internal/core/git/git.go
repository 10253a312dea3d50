// Package git provides the process boundary to the git tool: root
// resolution, read-only queries, staging, and classification of
// unstaged changes.
package git

import "context"

// Probe defines the repository queries diffwatch needs. All read
// failures degrade to sentinel returns plus a logged diagnostic;
// nothing panics past this boundary.
type Probe interface {
	// ResolveRoot walks upward from startDir looking for the repository
	// metadata directory and returns the containing working tree root.
	// ok is false when the filesystem root is reached without a match.
	ResolveRoot(startDir string) (root string, ok bool)
	// Status returns the porcelain short-format status lines for root.
	Status(ctx context.Context, root string) ([]string, error)
	// DiffFile returns the unified diff for one path. contextLines > 0
	// overrides the context window (-U<n>); 0 keeps git's default.
	DiffFile(ctx context.Context, root, path string, contextLines int) ([]string, error)
	// ShowBlob returns the lines of path's content at the current head.
	// ok is false when the path does not exist there or the query failed.
	ShowBlob(ctx context.Context, root, path string) (lines []string, ok bool)
	// Stage adds exactly one path to the index.
	Stage(ctx context.Context, root, path string) error
	// ReadWorktreeFile returns the current on-disk lines for a
	// worktree-relative path. ok is false when the file is absent.
	ReadWorktreeFile(root, path string) (lines []string, ok bool)
	// HeadRef returns the raw content of the repository's head marker
	// file. ok is false when it cannot be read.
	HeadRef(root string) (ref string, ok bool)
	// LocksHeld reports whether the tool's own lock markers are present
	// under the repository metadata directory.
	LocksHeld(root string) bool
}
