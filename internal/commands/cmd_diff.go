package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/colonyops/diffwatch/internal/core/diff"
	"github.com/colonyops/diffwatch/internal/core/git"
	"github.com/colonyops/diffwatch/internal/tui"
)

type DiffCmd struct {
	flags *Flags
	app   *App

	// flags
	full bool
	stat bool
}

// NewDiffCmd creates a new diff command
func NewDiffCmd(flags *Flags, app *App) *DiffCmd {
	return &DiffCmd{flags: flags, app: app}
}

// Register adds the diff command to the application
func (cmd *DiffCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "diff",
		Usage:     "Print diffs for unstaged files",
		UsageText: "diffwatch diff [path ...] [--full] [--stat]",
		Description: `Prints the diff for every unstaged file, or only the paths given
as arguments. Wholly new and deleted files get synthesized diffs.

--full prints whole-file context with metadata headers stripped.
--stat prints per-file addition/deletion counts instead of content.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "full",
				Usage:       "whole-file context, headers stripped",
				Destination: &cmd.full,
			},
			&cli.BoolFlag{
				Name:        "stat",
				Usage:       "print per-file change counts only",
				Destination: &cmd.stat,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *DiffCmd) run(ctx context.Context, c *cli.Command) error {
	root, entries, err := cmd.app.ClassifyUnstaged(ctx)
	if err != nil {
		return err
	}

	if paths := c.Args().Slice(); len(paths) > 0 {
		entries = slices.DeleteFunc(entries, func(e git.ChangeEntry) bool {
			return !slices.Contains(paths, e.Path)
		})
	}

	out := c.Root().Writer
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No unstaged changes")
		return nil
	}

	if cmd.stat {
		return cmd.printStats(ctx, out, root, entries)
	}

	colorize := isTerminal(out)
	for i, entry := range entries {
		lines, err := cmd.app.Synth.Lines(ctx, root, entry, cmd.full)
		if err != nil {
			fmt.Fprintf(os.Stderr, "diffwatch: %v\n", err)
			continue
		}

		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		for _, line := range lines {
			if colorize {
				line = tui.RenderDiffLine(line)
			}
			_, _ = fmt.Fprintln(out, line)
		}
	}
	return nil
}

func (cmd *DiffCmd) printStats(ctx context.Context, out io.Writer, root string, entries []git.ChangeEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	var totalAdd, totalDel int
	for _, entry := range entries {
		lines, err := cmd.app.Synth.Lines(ctx, root, entry, false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "diffwatch: %v\n", err)
			continue
		}

		add, del := diff.Count(lines)
		totalAdd += add
		totalDel += del
		_, _ = fmt.Fprintf(w, "%s\t+%d\t-%d\n", entry.Path, add, del)
	}

	_, _ = fmt.Fprintf(w, "total\t+%d\t-%d\n", totalAdd, totalDel)
	return w.Flush()
}

// isTerminal reports whether w is a TTY, so piped output stays free of
// escape sequences.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
