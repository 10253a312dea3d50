package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/diffwatch/internal/commands"
	"github.com/colonyops/diffwatch/internal/core/config"
	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/internal/core/eventbus"
	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/core/notify"
	"github.com/colonyops/diffwatch/pkg/executil"
	"github.com/colonyops/diffwatch/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, build() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var (
		logCloser func()
		busCancel context.CancelFunc
		dwApp     = &commands.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "diffwatch",
		Usage:     "Keep a diff view synchronized with your unstaged changes",
		UsageText: "diffwatch [global options] command [command options]",
		Description: `Diffwatch watches one git working tree, classifies every unstaged
file, and renders a live diff for each: real diffs for modified files,
synthesized ones for files that are wholly new or deleted. Files can be
staged straight from the view.

Run 'diffwatch' with no arguments to open the interactive view.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("DIFFWATCH_LOG_LEVEL"),
				Value:       "info",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file",
				Sources:     cli.EnvVars("DIFFWATCH_LOG_FILE"),
				Value:       commands.DefaultLogFile(),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("DIFFWATCH_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("DIFFWATCH_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// Always log to a file; the TUI owns the terminal
			logger, closer, err := logutils.New(flags.LogLevel, flags.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}

			bus := eventbus.New(0)
			busCtx, cancel := context.WithCancel(context.Background())
			busCancel = cancel
			bus.Start(busCtx)
			eventbus.NewNotificationRouter(bus).Register()

			probe := git.NewCLIProbe(cfg.GitPath, &executil.RealExecutor{})

			*dwApp = commands.App{
				Config:  cfg,
				Probe:   probe,
				Synth:   diff.NewSynthesizer(probe, cfg.Diff.FullContextLines),
				Bus:     bus,
				Notices: notify.NewStore(0),
			}

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if busCancel != nil {
				busCancel()
				dwApp.Bus.Wait()
			}
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	viewCmd := commands.NewViewCmd(flags, dwApp)
	app = viewCmd.Register(app)
	app = commands.NewLsCmd(flags, dwApp).Register(app)
	app = commands.NewDiffCmd(flags, dwApp).Register(app)
	app = commands.NewStageCmd(flags, dwApp).Register(app)

	// No subcommand opens the interactive view
	app.Action = viewCmd.Run

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
