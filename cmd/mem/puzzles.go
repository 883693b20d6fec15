package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/entrhq/mem/pkg/memory"
	"github.com/entrhq/mem/pkg/puzzle"
)

func newPuzzleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "puzzle",
		Short: "Track puzzles and what blocks them",
	}

	var description, blocks string
	add := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add an open puzzle",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.store.CreatePuzzle(cmd.Context(), strings.Join(args, " "), description, blocks)
			if err != nil {
				return err
			}
			return a.printer.Message("created %s", e.ID)
		},
	}
	add.Flags().StringVarP(&description, "description", "d", "", "longer description")
	add.Flags().StringVarP(&blocks, "blocks", "b", "", "id of a puzzle this one blocks")

	cmd.AddCommand(
		add,
		newStatusCmd(a, "close", memory.StatusClosed),
		newStatusCmd(a, "reopen", memory.StatusOpen),
		newBlocksCmd(a, "link <id> <target>", "Make id block target", memory.BlocksAppend, cobra.ExactArgs(2)),
		newBlocksCmd(a, "unlink <id> [target]", "Stop id blocking target, or anything", memory.BlocksRemove, cobra.RangeArgs(1, 2)),
		newBlocksCmd(a, "block <id> [target]", "Set id to block only target, or nothing", memory.BlocksSet, cobra.RangeArgs(1, 2)),
		newPuzzleListCmd(a),
		newTreeCmd(a),
		newPuzzleShowCmd(a),
	)
	return cmd
}

func newStatusCmd(a *app, verb string, status memory.Status) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("Mark a puzzle %s", status),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.store.UpdatePuzzleStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			return a.printer.Message("%s is %s", e.ID, e.Status)
		},
	}
}

func newBlocksCmd(a *app, use, short string, mode memory.BlocksMode, args cobra.PositionalArgs) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) > 1 {
				target = args[1]
			}
			e, err := a.store.UpdatePuzzleBlocks(cmd.Context(), args[0], target, mode)
			if err != nil {
				return err
			}
			if e.Blocks.Len() == 0 {
				return a.printer.Message("%s blocks nothing", e.ID)
			}
			return a.printer.Message("%s blocks %s", e.ID, strings.Join(e.Blocks, " "))
		},
	}
}

func newPuzzleListCmd(a *app) *cobra.Command {
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List puzzles by state, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := a.graph(cmd)
			if err != nil {
				return err
			}
			var puzzles []*memory.Entry
			switch state {
			case "ready":
				puzzles = g.Ready()
			case "blocked":
				puzzles = g.Blocked()
			case "closed":
				puzzles = g.Closed()
			case "open":
				puzzles = g.Open()
			case "all":
				puzzles = g.Puzzles()
			default:
				return fmt.Errorf("unknown state %q (want ready, blocked, closed, open or all)", state)
			}
			return a.printer.PuzzleList("puzzles", puzzles, g)
		},
	}
	cmd.Flags().StringVarP(&state, "state", "s", "open", "ready, blocked, closed, open or all")
	return cmd
}

func newTreeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <id>",
		Short: "Show the blocker chain above a puzzle and everything it blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.graph(cmd)
			if err != nil {
				return err
			}
			lines, err := g.TreeLines(args[0])
			if err != nil {
				return err
			}
			return a.printer.Tree(args[0], lines, g)
		},
	}
}

func newPuzzleShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a puzzle with its state and open blockers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.graph(cmd)
			if err != nil {
				return err
			}
			p, err := g.Get(args[0])
			if err != nil {
				return err
			}
			if err := a.printer.Entry(p, g); err != nil {
				return err
			}
			return showBlockers(a, g, p.ID)
		},
	}
}

func showBlockers(a *app, g *puzzle.Graph, id string) error {
	blockers, err := g.BlockersOf(id)
	if err != nil || len(blockers) == 0 {
		return err
	}
	return a.printer.Message("blocked by %s", strings.Join(blockers, " "))
}
