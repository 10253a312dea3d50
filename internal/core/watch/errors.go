package watch

import "fmt"

// NotWatchableError indicates the root has no metadata directory to
// watch, e.g. it is not a repository or .git is a worktree file.
type NotWatchableError struct {
	Root string
	Err  error
}

func (e *NotWatchableError) Error() string {
	return fmt.Sprintf("cannot watch %s: no repository metadata directory", e.Root)
}

func (e *NotWatchableError) Unwrap() error { return e.Err }
