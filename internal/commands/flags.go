package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/diffwatch/internal/core/config"
	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/internal/core/eventbus"
	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/core/notify"
	"github.com/colonyops/diffwatch/internal/core/view"
)

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string
	DataDir    string
}

// App holds the wired services built in the root command's Before
// hook. Commands hold a pointer to a pre-allocated App that is
// populated before any action runs.
type App struct {
	Config  *config.Config
	Probe   git.Probe
	Synth   *diff.Synthesizer
	Bus     *eventbus.EventBus
	Notices *notify.Store
}

// ClassifyUnstaged resolves the repository from the working directory
// and returns its classified unstaged entries with the configured
// ignore patterns applied.
func (a *App) ClassifyUnstaged(ctx context.Context) (string, []git.ChangeEntry, error) {
	root, ok := a.Probe.ResolveRoot(".")
	if !ok {
		return "", nil, view.ErrNotARepository
	}

	lines, err := a.Probe.Status(ctx, root)
	if err != nil {
		return "", nil, fmt.Errorf("query status: %w", err)
	}

	entries := view.FilterIgnored(git.Classify(lines), a.Config.View.Ignore)
	return root, entries, nil
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "diffwatch", "config.yaml")
}

// DefaultDataDir returns the default data directory using XDG_DATA_HOME.
func DefaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "diffwatch")
}

// DefaultLogFile returns the default log file path using the system's
// state directory.
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "diffwatch", "diffwatch.log")
	}

	home, _ := os.UserHomeDir()
	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "diffwatch", "diffwatch.log")
	}
	return filepath.Join(home, ".local", "state", "diffwatch", "diffwatch.log")
}
