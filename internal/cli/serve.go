package cli

import (
	"resumetailor/internal/config"
	"resumetailor/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the workspace HTTP API",
	Long: `Start an HTTP server that exposes the editing workspace as a JSON API.

Available endpoints:
- POST /tailor: Upload a resume and generate a tailored result
- POST /analysis/{id}/open: Open a result for editing
- GET /analysis/{id}: Result, regeneration status and view
- PUT, POST, PATCH and DELETE under /analysis/{id}: Section edits
- POST /analysis/{id}/regenerate: Regenerate from the edited result
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

var (
	serveHost string
	servePort string
)

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.drafts.Close(); err != nil {
			a.logger.LogError(err, "Failed to close draft store")
		}
	}()

	serverCfg := server.ServerConfigFrom(a.cfg, Version)
	if serveHost != "" {
		serverCfg.Host = serveHost
	}
	if servePort != "" {
		serverCfg.Port = servePort
	}

	deps := server.Dependencies{
		Backend:       a.client,
		Drafts:        a.drafts,
		Observability: a.obs,
	}
	if a.cfg.Vault.Enabled {
		vaultClient, err := config.NewVaultClient(a.cfg.Vault, a.logger)
		if err != nil {
			return err
		}
		if vaultClient != nil {
			deps.Vault = vaultClient
		}
	}

	// Start shuts observability down on exit
	return server.NewServer(a.cfg, serverCfg, deps, a.logger).Start(ctx)
}
