package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/diffwatch/internal/core/view"
)

type StageCmd struct {
	flags *Flags
	app   *App
}

// NewStageCmd creates a new stage command
func NewStageCmd(flags *Flags, app *App) *StageCmd {
	return &StageCmd{flags: flags, app: app}
}

// Register adds the stage command to the application
func (cmd *StageCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:        "stage",
		Usage:       "Stage one file",
		UsageText:   "diffwatch stage <path>",
		Description: `Stages exactly one file, leaving every other pending change alone.`,
		Action:      cmd.run,
	})

	return app
}

func (cmd *StageCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("stage takes exactly one path, got %d", c.Args().Len())
	}
	path := c.Args().First()

	root, ok := cmd.app.Probe.ResolveRoot(".")
	if !ok {
		return view.ErrNotARepository
	}

	if err := cmd.app.Probe.Stage(ctx, root, path); err != nil {
		return &view.StageError{Path: path, Err: err}
	}

	fmt.Fprintf(c.Root().Writer, "staged %s\n", path)
	return nil
}
