package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/diffwatch/internal/core/view"
	"github.com/colonyops/diffwatch/internal/core/watch"
	"github.com/colonyops/diffwatch/internal/tui"
)

type ViewCmd struct {
	flags *Flags
	app   *App
}

// NewViewCmd creates a new view command
func NewViewCmd(flags *Flags, app *App) *ViewCmd {
	return &ViewCmd{flags: flags, app: app}
}

// Register adds the view command to the application
func (cmd *ViewCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "view",
		Usage:     "Open the interactive diff view",
		UsageText: "diffwatch view",
		Description: `Opens the interactive two-pane diff view and keeps it synchronized
with the repository's unstaged state. Also the default when diffwatch
runs with no subcommand.`,
		Action: cmd.Run,
	})

	return app
}

// Run executes the TUI. Exported for use as default command.
func (cmd *ViewCmd) Run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.app.Config

	root, ok := cmd.app.Probe.ResolveRoot(".")
	if !ok {
		return view.ErrNotARepository
	}

	renderer := tui.NewProgramRenderer()
	controller := view.NewController(cmd.app.Probe, cmd.app.Synth, cmd.app.Bus, renderer, view.Options{
		Ignore:        cfg.View.Ignore,
		RetryDelay:    cfg.Watch.LockRetryDelay.Std(),
		RetryAttempts: cfg.Watch.LockRetryAttempts,
	})

	m := tui.New(tui.Deps{Controller: controller, Notices: cmd.app.Notices})
	p := tea.NewProgram(m, tea.WithAltScreen())
	renderer.Attach(p)
	tui.ForwardNotifications(cmd.app.Bus, cmd.app.Notices, p)

	if cfg.Watch.Enabled {
		watcher, err := watch.NewHeadWatcher(root, cmd.app.Bus, controller.OnHeadChange, watch.Options{
			Debounce:     cfg.Watch.Debounce.Std(),
			PollInterval: cfg.Watch.PollInterval.Std(),
		})
		if err != nil {
			log.Warn().Err(err).Msg("head watcher unavailable, external changes will not auto-refresh")
		} else {
			defer func() { _ = watcher.Close() }()
		}
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run view: %w", err)
	}
	controller.Disable()
	return nil
}
