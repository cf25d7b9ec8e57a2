package cli

import (
	"context"
	"fmt"

	"resumetailor/internal/common"
	"resumetailor/internal/types"
	"resumetailor/internal/workspace"

	"github.com/spf13/cobra"
)

var regenerateCmd = &cobra.Command{
	Use:   "regenerate [result-id]",
	Short: "Apply edits to a result and regenerate it",
	Long: `Open a result with its drafts, apply the statement, skills and style given
as flags, and submit it for regeneration. The regenerated result gets a new id,
which is printed along with the refreshed result.

Use --dry-run to print the request that would be submitted instead.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.ValidateResultID(args[0]); err != nil {
			return err
		}
		if regenerateStyle != "" {
			if _, err := types.ParseStyle(regenerateStyle); err != nil {
				return err
			}
		}
		return outputConfig(cmd, &regenerateConfig)
	},
	RunE: runRegenerate,
}

var (
	regenerateConfig    common.CommandConfig
	regenerateStatement string
	regenerateSkills    string
	regenerateStyle     string
	regenerateDryRun    bool
)

func init() {
	addOutputFlags(regenerateCmd, &regenerateConfig)
	regenerateCmd.Flags().StringVar(&regenerateStatement, "statement", "", "Replace the personal statement")
	regenerateCmd.Flags().StringVar(&regenerateSkills, "skills", "", "Replace the comma-separated skills")
	regenerateCmd.Flags().StringVar(&regenerateStyle, "style", "", "Resume style: Slim, Modern or Fancy")
	regenerateCmd.Flags().BoolVar(&regenerateDryRun, "dry-run", false, "Print the regeneration request without submitting it")
}

func runRegenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	ws, err := a.openWorkspace(ctx, args[0], progressWriter(cmd))
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("statement") {
		ws.SetStatement(regenerateStatement)
	}
	if flags.Changed("skills") {
		ws.SetSkills(regenerateSkills)
	}
	if regenerateStyle != "" {
		style, err := types.ParseStyle(regenerateStyle)
		if err != nil {
			return err
		}
		if err := ws.SetStyle(style); err != nil {
			return err
		}
	}

	if regenerateDryRun {
		payload, err := ws.PayloadJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
		return err
	}

	return common.RunCommand(ctx, a.logger, regenerateConfig, func(ctx context.Context) (workspace.Document, error) {
		if err := ws.Regenerate(ctx); err != nil {
			return workspace.Document{}, fmt.Errorf("%s: %w", ws.Status().Message, err)
		}
		return ws.Document(), nil
	})
}
