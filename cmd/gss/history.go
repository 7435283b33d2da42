package main

import (
	"fmt"
	"slices"

	"github.com/aretw0/gss/internal/presentation/tui"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or clear recorded calculations",
	}
	cmd.AddCommand(newHistoryListCmd(a), newHistoryShowCmd(a), newHistoryClearCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:     "ls [session]",
		Aliases: []string{"list"},
		Short:   "List sessions, or the entries of one session (newest first)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.history(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				sessions, err := history.Sessions(cmd.Context())
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(out, sessions)
				}
				for _, s := range sessions {
					fmt.Fprintln(out, s)
				}
				return nil
			}

			entries, err := history.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			slices.Reverse(entries)
			if asJSON {
				return writeJSON(out, entries)
			}
			return render(out, tui.HistoryMarkdown(args[0], entries))
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print raw JSON")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session> <entry-id>",
		Short: "Print the stored payload of one entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.history(cmd.Context())
			if err != nil {
				return err
			}
			entry, err := history.Get(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entry)
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <session>",
		Short: "Delete every entry of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := a.history(cmd.Context())
			if err != nil {
				return err
			}
			if err := history.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History of %s cleared.\n", args[0])
			return nil
		},
	}
}
