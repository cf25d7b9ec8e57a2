package cli

import (
	"bytes"
	"context"
	"fmt"

	"resumetailor/internal/common"
	"resumetailor/internal/types"
	"resumetailor/internal/workflow"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [resume-file] [job-description-file]",
	Short: "Upload a resume and generate a version tailored to a job",
	Long: `Upload your resume (PDF, DOCX or plain text), analyze the job description
and generate a tailored resume. The job description must be a text file with
at least 30 characters. Progress is reported on stderr.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := common.NewFileProcessor(nil, 0).CheckResumeFile(args[0]); err != nil {
			return err
		}
		return outputConfig(cmd, &tailorConfig)
	},
	RunE: runTailor,
}

var (
	tailorConfig common.CommandConfig
	tailorRole   string
	tailorLevel  string
	tailorStyle  string
)

func init() {
	addOutputFlags(tailorCmd, &tailorConfig)
	tailorCmd.Flags().StringVar(&tailorRole, "role", "", "Target role (default \""+workflow.DefaultTargetRole+"\")")
	tailorCmd.Flags().StringVar(&tailorLevel, "level", "", "Experience level (default \""+workflow.DefaultExperienceLevel+"\")")
	tailorCmd.Flags().StringVar(&tailorStyle, "style", "", "Resume style: Slim, Modern or Fancy")
}

func runTailor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	style := types.Style("")
	if tailorStyle != "" {
		if style, err = types.ParseStyle(tailorStyle); err != nil {
			return err
		}
	}

	progress := progressWriter(cmd)
	runner := workflow.NewRunner(a.client,
		workflow.WithLogger(a.logger),
		workflow.WithObserver(func(p workflow.Progress) {
			if p.Percent > 0 {
				_, _ = fmt.Fprintf(progress, "[%3d%%] %s\n", p.Percent, p.Label())
			}
		}),
	)

	createInput := func(files []common.InputFile) (workflow.Input, error) {
		if len(files) != 2 {
			return workflow.Input{}, fmt.Errorf("expected 2 files, got %d", len(files))
		}
		return workflow.Input{
			ResumeName:      files[0].Name(),
			Resume:          bytes.NewReader(files[0].Data),
			JobText:         files[1].Text(),
			TargetRole:      tailorRole,
			ExperienceLevel: tailorLevel,
			Style:           style,
		}, nil
	}

	logDetails := func(input workflow.Input, cfg common.CommandConfig) {
		a.logger.Info("Starting resume tailoring",
			"resume", input.ResumeName,
			"job_chars", len(input.JobText),
			"output_format", cfg.OutputFormat)
	}

	tailorOperation := func(ctx context.Context, input workflow.Input) (*workflow.Outcome, error) {
		outcome, err := runner.Run(ctx, input)
		a.obs.GetMetrics().RecordTailoringRun(ctx, err == nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", runner.Progress().Error, err)
		}
		return outcome, nil
	}

	err = common.RunFileCommand(
		ctx,
		a.logger,
		a.cfg.App.MaxFileSize,
		tailorConfig,
		args,
		createInput,
		tailorOperation,
		logDetails,
	)
	if err != nil {
		return fmt.Errorf("failed to tailor resume: %w", err)
	}
	a.logger.Info("Resume tailoring completed successfully")
	return nil
}
