package main

import (
	"github.com/spf13/cobra"

	"github.com/entrhq/mem/pkg/memory"
)

func newFeedbackCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Record and review user feedback",
	}

	add := &cobra.Command{
		Use:   "add [content...]",
		Short: "Record feedback (content from arguments or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.content(args)
			if err != nil {
				return err
			}
			e, err := a.store.CreateFeedback(cmd.Context(), content)
			if err != nil {
				return err
			}
			return a.printer.Message("created %s", e.ID)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List feedback, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.store.List(cmd.Context(), memory.ListOptions{Type: memory.TypeFeedback})
			if err != nil {
				return err
			}
			return a.printer.Entries("feedback-list", entries, nil)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all feedback",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := a.store.ClearFeedback(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Message("cleared %d feedback entries", n)
		},
	}

	cmd.AddCommand(add, list, clearCmd)
	return cmd
}
