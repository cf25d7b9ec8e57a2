package cli

import (
	"context"
	"fmt"
	"io"

	"resumetailor/internal/client"
	"resumetailor/internal/common"
	"resumetailor/internal/config"
	"resumetailor/internal/drafts"
	"resumetailor/internal/errors"
	"resumetailor/internal/observability"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

var rootCmd = &cobra.Command{
	Use:   "resumetailor",
	Short: "Edit and regenerate tailored resumes",
	Long: `resumetailor opens tailored resume results from the tailoring backend,
lets you edit their statement, skills, experience and education, and
regenerates them. Unsaved section edits are kept as drafts between runs.`,
	SilenceUsage: true,
}

func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Attach the config and logger to the context, making them available to all subcommands
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}

// app bundles the collaborators a command needs
type app struct {
	cfg    *config.Config
	logger *errors.Logger
	obs    *observability.ObservabilityManager
	client *client.Client
	drafts *drafts.Store
}

// newApp wires observability, the backend client and the draft store.
// withPrometheus starts the scrape endpoint, which only long-running
// commands want.
func newApp(ctx context.Context, withPrometheus bool) (*app, error) {
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	obsConfig := observability.GetObservabilityConfig(cfg, Version)
	if !withPrometheus {
		obsConfig.Prometheus.Enabled = false
	}
	om, err := observability.NewObservabilityManager(obsConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	metrics := om.GetMetrics()

	backend, err := drafts.OpenBackend(ctx, cfg.Drafts, logger)
	if err != nil {
		_ = om.Shutdown(ctx)
		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: logger,
		obs:    om,
		client: client.New(cfg.API, logger,
			client.WithRecorder(metrics),
			client.WithTracer(om.Tracer("resumetailor.client")),
		),
		drafts: drafts.NewStore(backend, logger,
			drafts.WithNamespace(cfg.Drafts.Namespace),
			drafts.WithObserver(metrics),
		),
	}, nil
}

// Close releases the draft store and flushes telemetry
func (a *app) Close(ctx context.Context) {
	if err := a.drafts.Close(); err != nil {
		a.logger.LogError(err, "Failed to close draft store")
	}
	if err := a.obs.Shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.LogError(err, "Failed to shutdown observability")
	}
}

// outputConfig completes a command's output settings from config and cmd
func outputConfig(cmd *cobra.Command, base *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	// Apply default format if not specified
	if base.OutputFormat == "" {
		base.OutputFormat = cfg.App.DefaultFormat
	}
	base.Stdout = cmd.OutOrStdout()
	return common.ValidateOutputFormat(base.OutputFormat, cfg.App.SupportedFormats)
}

// addOutputFlags registers --output and --format with completion
func addOutputFlags(cmd *cobra.Command, out *common.CommandConfig) {
	cmd.Flags().StringVarP(&out.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&out.OutputFormat, "format", "", "Output format: json, text, or markdown")

	// Add completion for format flag
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// progressWriter is where commands report progress; stdout stays clean for output
func progressWriter(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}

func init() {
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(tailorCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}
