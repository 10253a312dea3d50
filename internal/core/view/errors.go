package view

import "errors"

var (
	// ErrNotARepository means root resolution failed; entry points check
	// this first and abort with a user-visible message.
	ErrNotARepository = errors.New("not inside a git repository")

	// ErrRepositoryBusy means lock markers persisted past the retry
	// budget; only the current reconciliation cycle is abandoned.
	ErrRepositoryBusy = errors.New("repository busy")
)

// StageError reports a failed staging operation. The view is left
// untouched when this occurs.
type StageError struct {
	Path string
	Err  error
}

func (e *StageError) Error() string { return "stage " + e.Path + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// QueryError reports a failed read query during reconciliation.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string { return e.Op + " query failed: " + e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }
