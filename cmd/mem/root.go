package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/mem/pkg/config"
	"github.com/entrhq/mem/pkg/logging"
	"github.com/entrhq/mem/pkg/memory"
	"github.com/entrhq/mem/pkg/present"
	"github.com/entrhq/mem/pkg/puzzle"
)

var errNoContent = errors.New("no content: pass it as arguments or pipe it on stdin")

// app holds what every subcommand needs once the project is resolved.
type app struct {
	dir      string
	stdin    io.Reader
	stdinTTY bool
	out      io.Writer
	styled   bool

	logger  *logging.Logger
	project *config.Project
	store   *memory.FileStore
	printer *present.Printer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "mem",
		Short: "Project memory for coding agents",
		Long: `mem keeps notes, puzzles and feedback for the current project in .mem/.

Notes are durable facts, capped at 32768 bytes in total. Puzzles are open
questions or tasks; a puzzle can block others, and blocked puzzles are not
ready until every puzzle blocking them is closed. Feedback records
corrections from the user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open()
		},
	}
	root.PersistentFlags().StringVar(&a.dir, "dir", "", "project root (default $"+config.EnvRoot+" or the working directory)")

	root.AddCommand(
		newNoteCmd(a),
		newPuzzleCmd(a),
		newFeedbackCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newDeleteCmd(a),
		newBudgetCmd(a),
		newPrefixCmd(a),
	)
	return root
}

func (a *app) open() error {
	logger, err := logging.New("mem")
	a.logger = logger
	slog.SetDefault(logger.Slog())
	if err != nil {
		slog.Warn("file logging unavailable", "error", err)
	}

	root, err := config.ResolveRoot(a.dir)
	if err != nil {
		return err
	}
	a.project, err = config.LoadProject(root)
	if err != nil {
		return err
	}
	a.store, err = a.project.OpenStore()
	if err != nil {
		return err
	}
	a.printer = present.New(a.out, a.styled)
	slog.Debug("project opened", "root", root, "prefix", a.project.Prefix)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

func (a *app) graph(cmd *cobra.Command) (*puzzle.Graph, error) {
	return puzzle.Load(cmd.Context(), a.store)
}

// content joins args, or reads stdin when there are none and stdin is
// not a terminal.
func (a *app) content(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	if a.stdinTTY || a.stdin == nil {
		return "", errNoContent
	}
	raw, err := io.ReadAll(a.stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return "", errNoContent
	}
	return string(raw), nil
}

// reportBudget prints the budget only once it is past the soft limit.
func (a *app) reportBudget(b memory.Budget) error {
	if !b.Warn() {
		return nil
	}
	return a.printer.Budget(b)
}
