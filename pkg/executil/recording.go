package executil

import (
	"context"
	"strings"
	"sync"
)

// RecordedCommand captures a command that was executed.
type RecordedCommand struct {
	Dir  string
	Cmd  string
	Args []string
}

// RecordingExecutor captures commands for testing.
// Configure Outputs and Errors to control return values. Keys are matched
// against "cmd arg1 arg2 ..." by longest prefix, so a test can script
// "git status" and "git diff" independently while a bare "git" key acts
// as a catch-all.
type RecordingExecutor struct {
	mu       sync.Mutex
	Commands []RecordedCommand

	// Outputs maps command prefixes to stdout.
	Outputs map[string][]byte

	// Errors maps command prefixes to errors.
	Errors map[string]error
}

// Run records the command and returns configured output/error.
func (e *RecordingExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.record("", cmd, args...)
}

// RunDir records the command with directory and returns configured output/error.
func (e *RecordingExecutor) RunDir(ctx context.Context, dir, cmd string, args ...string) ([]byte, error) {
	return e.record(dir, cmd, args...)
}

func (e *RecordingExecutor) record(dir, cmd string, args ...string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.Commands = append(e.Commands, RecordedCommand{
		Dir:  dir,
		Cmd:  cmd,
		Args: args,
	})

	full := cmd
	if len(args) > 0 {
		full += " " + strings.Join(args, " ")
	}

	var (
		out      []byte
		err      error
		matchLen = -1
	)
	for key, v := range e.Outputs {
		if strings.HasPrefix(full, key) && len(key) > matchLen {
			out = v
			matchLen = len(key)
		}
	}
	matchLen = -1
	for key, v := range e.Errors {
		if strings.HasPrefix(full, key) && len(key) > matchLen {
			err = v
			matchLen = len(key)
		}
	}

	return out, err
}

// Calls returns the recorded commands whose "cmd arg1 ..." string starts
// with prefix.
func (e *RecordingExecutor) Calls(prefix string) []RecordedCommand {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []RecordedCommand
	for _, rc := range e.Commands {
		full := rc.Cmd
		if len(rc.Args) > 0 {
			full += " " + strings.Join(rc.Args, " ")
		}
		if strings.HasPrefix(full, prefix) {
			out = append(out, rc)
		}
	}
	return out
}

// Reset clears recorded commands.
func (e *RecordingExecutor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Commands = nil
}
