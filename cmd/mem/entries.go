package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/mem/pkg/memory"
)

func newListCmd(a *app) *cobra.Command {
	var (
		typ   string
		match string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := memory.ListOptions{Type: memory.Type(typ), Match: match, Limit: limit}
			if typ != "" && !opts.Type.Valid() {
				return fmt.Errorf("unknown type %q (want note, puzzle or feedback)", typ)
			}
			entries, err := a.store.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			g, err := a.graph(cmd)
			if err != nil {
				return err
			}
			return a.printer.Entries("memory", entries, g)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only entries of this type")
	cmd.Flags().StringVar(&match, "match", "", "glob matched against id and title")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "at most this many entries")
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !e.IsPuzzle() {
				return a.printer.Entry(e, nil)
			}
			g, err := a.graph(cmd)
			if err != nil {
				return err
			}
			if err := a.printer.Entry(e, g); err != nil {
				return err
			}
			return showBlockers(a, g, e.ID)
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete notes or puzzles",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range args {
				if err := a.store.Delete(cmd.Context(), id); err != nil {
					return err
				}
				if err := a.printer.Message("deleted %s", id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newBudgetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "budget",
		Short: "Show how much of the note budget is used",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.store.NoteBudget(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Budget(b)
		},
	}
}

func newPrefixCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "prefix",
		Short: "Print the id prefix of this project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printer.Message("%s", a.project.Prefix)
		},
	}
}
