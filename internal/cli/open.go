package cli

import (
	"context"
	"fmt"
	"io"

	"resumetailor/internal/common"
	"resumetailor/internal/types"
	"resumetailor/internal/workspace"

	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open [result-id]",
	Short: "Open a tailored result with any saved drafts applied",
	Long: `Fetch a tailored result from the backend and print it. Experience and
education drafts saved for the result replace the server's sections.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.ValidateResultID(args[0]); err != nil {
			return err
		}
		return outputConfig(cmd, &openConfig)
	},
	RunE: runOpen,
}

var (
	openConfig common.CommandConfig
	openTab    string
)

func init() {
	addOutputFlags(openCmd, &openConfig)
	openCmd.Flags().StringVar(&openTab, "tab", string(workspace.DefaultTab), "Panel to mark active: Overview, Summary, Skills, Experience, Education or Review")
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	return common.RunCommand(ctx, a.logger, openConfig, func(ctx context.Context) (workspace.Document, error) {
		ws, err := a.openWorkspace(ctx, args[0], progressWriter(cmd))
		if err != nil {
			return workspace.Document{}, err
		}
		if err := ws.SelectTab(workspace.Tab(openTab)); err != nil {
			return workspace.Document{}, err
		}
		return ws.Document(), nil
	})
}

// openWorkspace fetches the canonical result for id and opens it with drafts applied
func (a *app) openWorkspace(ctx context.Context, id string, progress io.Writer) (*workspace.Workspace, error) {
	resp, err := a.client.GetResult(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to open result %s: %w", id, err)
	}
	canonical := *resp
	if canonical.ID == "" {
		canonical.ID = id
	}
	result := workspace.FromResponse(canonical, a.client.OutputFiles(canonical.Outputs, canonical.ID), types.DefaultStyle)

	return workspace.Open(ctx, result, a.client,
		workspace.WithDrafts(a.drafts),
		workspace.WithNavigator(&terminalNavigator{out: progress}),
		workspace.WithRecorder(a.obs.GetMetrics()),
		workspace.WithLogger(a.logger),
	), nil
}

// terminalNavigator tells the user where a regenerated result now lives
type terminalNavigator struct {
	out io.Writer
}

func (n *terminalNavigator) ReplaceState(path string) bool {
	_, _ = fmt.Fprintf(n.out, "Result moved to %s\n", path)
	return true
}

func (n *terminalNavigator) Navigate(path string) {
	n.ReplaceState(path)
}
