package main

import (
	"github.com/spf13/cobra"
)

func newNoteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Add, update or consolidate notes",
	}

	add := &cobra.Command{
		Use:   "add [content...]",
		Short: "Add a note (content from arguments or stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.content(args)
			if err != nil {
				return err
			}
			e, b, err := a.store.CreateNote(cmd.Context(), content)
			if err != nil {
				return err
			}
			if err := a.printer.Message("created %s", e.ID); err != nil {
				return err
			}
			return a.reportBudget(b)
		},
	}

	update := &cobra.Command{
		Use:   "update <id> [content...]",
		Short: "Replace the content of a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := a.content(args[1:])
			if err != nil {
				return err
			}
			e, b, err := a.store.UpdateNote(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			if err := a.printer.Message("updated %s", e.ID); err != nil {
				return err
			}
			return a.reportBudget(b)
		},
	}

	var replaceContent string
	replace := &cobra.Command{
		Use:   "replace <id>... [-m content]",
		Short: "Replace several notes with one consolidated note",
		Long: `Replace deletes the given notes and writes one new note in their place.
Content comes from -m or stdin. Nothing is changed if any id is not a note.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			var err error
			if replaceContent != "" {
				content = replaceContent
			} else if content, err = a.content(nil); err != nil {
				return err
			}
			e, b, err := a.store.ReplaceNotes(cmd.Context(), args, content)
			if err != nil {
				return err
			}
			if err := a.printer.Message("replaced %d notes with %s", len(args), e.ID); err != nil {
				return err
			}
			return a.reportBudget(b)
		},
	}
	replace.Flags().StringVarP(&replaceContent, "message", "m", "", "content of the consolidated note")

	cmd.AddCommand(add, update, replace)
	return cmd
}
