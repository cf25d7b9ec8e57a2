package cli

import (
	"fmt"

	"resumetailor/internal/drafts"

	"github.com/spf13/cobra"
)

var draftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "Inspect and clear saved section drafts",
	Long: `Drafts hold unsaved experience and education edits per result id. They are
applied whenever the result is opened again.`,
}

var draftsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List result ids that have drafts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		ids, err := a.drafts.List(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, id := range ids {
			_, _ = fmt.Fprintln(out, id)
		}
		return nil
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "show [result-id]",
	Short: "Print the stored drafts of a result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		out := cmd.OutOrStdout()
		found := false
		for _, section := range drafts.Sections {
			raw, ok, err := a.drafts.Raw(ctx, args[0], section)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			found = true
			_, _ = fmt.Fprintf(out, "%s: %s\n", section, raw)
		}
		if !found {
			_, _ = fmt.Fprintf(out, "No drafts for %s\n", args[0])
		}
		return nil
	},
}

var draftsClearCmd = &cobra.Command{
	Use:   "clear [result-id]",
	Short: "Delete the drafts of a result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		return a.drafts.Clear(ctx, args[0])
	},
}

var draftsWatchCmd = &cobra.Command{
	Use:   "watch [result-id]",
	Short: "Report draft changes made by other processes (file backend only)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close(ctx)

		sections, err := a.drafts.Watch(ctx, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for section := range sections {
			_, _ = fmt.Fprintf(out, "%s draft changed\n", section)
		}
		return nil
	},
}

func init() {
	draftsCmd.AddCommand(draftsListCmd)
	draftsCmd.AddCommand(draftsShowCmd)
	draftsCmd.AddCommand(draftsClearCmd)
	draftsCmd.AddCommand(draftsWatchCmd)
}
