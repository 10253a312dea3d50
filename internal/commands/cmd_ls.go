package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/pkg/iojson"
)

type LsCmd struct {
	flags *Flags
	app   *App

	// flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags, app *App) *LsCmd {
	return &LsCmd{flags: flags, app: app}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List unstaged changes",
		UsageText: "diffwatch ls [--json]",
		Description: `Displays a table of every unstaged file with its change kind
(modified, new, deleted) and per-file addition/deletion counts.

Use --json for machine-readable output, one JSON object per line.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})

	return app
}

type lsEntry struct {
	Path      string `json:"path"`
	Kind      string `json:"kind"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	root, entries, err := cmd.app.ClassifyUnstaged(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintln(os.Stderr, "No unstaged changes")
		}
		return nil
	}

	out := c.Root().Writer

	rows := make([]lsEntry, 0, len(entries))
	for _, entry := range entries {
		row := lsEntry{Path: entry.Path, Kind: entry.Kind.String()}
		if lines, err := cmd.app.Synth.Lines(ctx, root, entry, false); err == nil {
			row.Additions, row.Deletions = diff.Count(lines)
		}
		rows = append(rows, row)
	}

	if cmd.jsonOutput {
		for _, row := range rows {
			if err := iojson.WriteLine(out, row); err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
		}
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KIND\tPATH\tCHANGES")
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\t+%d -%d\n", row.Kind, row.Path, row.Additions, row.Deletions)
	}
	return w.Flush()
}
