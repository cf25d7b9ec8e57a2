// Package workflow runs the upload, analyze and generate pipeline that
// produces a tailored result from a resume file and a job description.
package workflow

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"
	"resumetailor/internal/workspace"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTargetRole      = "Software Engineer"
	DefaultExperienceLevel = "Mid"

	// MinJobTextLength is the shortest trimmed job description accepted
	MinJobTextLength = 30

	// maxActivity bounds the activity log
	maxActivity = 6

	ValidationMessage = "Add a resume and a detailed job description to continue."
	FailureMessage    = "Something went wrong. Try again with another file."
)

// Backend is the part of the backend client the pipeline calls
type Backend interface {
	ParseResumeFile(ctx context.Context, fileName string, content io.Reader) (*types.ParseResumeResponse, error)
	AnalyzeJob(ctx context.Context, req types.AnalyzeJobRequest) (*types.AnalyzeJobResponse, error)
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GenerateResponse, error)
	GetResult(ctx context.Context, id string) (*types.ResultResponse, error)
	OutputFiles(paths []string, id string) []types.OutputFile
}

// Input is one tailoring request
type Input struct {
	ResumeName      string      `validate:"required"`
	Resume          io.Reader   `validate:"required"`
	JobText         string      `validate:"mintrimmed=30"`
	TargetRole      string      `validate:"omitempty,max=120"`
	ExperienceLevel string      `validate:"omitempty,max=40"`
	Style           types.Style `validate:"omitempty,oneof=Slim Modern Fancy"`
}

func (in Input) withDefaults() Input {
	if strings.TrimSpace(in.TargetRole) == "" {
		in.TargetRole = DefaultTargetRole
	}
	if strings.TrimSpace(in.ExperienceLevel) == "" {
		in.ExperienceLevel = DefaultExperienceLevel
	}
	if in.Style == "" {
		in.Style = types.DefaultStyle
	}
	return in
}

// Preview is the quick summary shown before the full workspace loads
type Preview struct {
	CandidateName    string             `json:"candidateName"`
	CurrentTitle     string             `json:"currentTitle"`
	MatchScore       int                `json:"matchScore"`
	Keywords         []string           `json:"keywords"`
	Gaps             []string           `json:"gaps"`
	Highlights       []string           `json:"highlights"`
	SuggestedBullets []string           `json:"suggestedBullets"`
	OutputFiles      []types.OutputFile `json:"outputFiles"`
}

// Outcome is what a successful run produces
type Outcome struct {
	ID      string                `json:"id"`
	Preview Preview               `json:"preview"`
	Result  types.TailoringResult `json:"result"`
}

// Path is the workspace address of the generated result
func (o *Outcome) Path() string {
	return workspace.AnalysisPath(o.ID)
}

// Observer is called with every progress change
type Observer func(Progress)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("mintrimmed", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(strings.TrimSpace(fl.Field().String())) >= limit
	})
	return v
}

// Runner executes the pipeline and tracks its progress. One Runner serves
// one form; Run refuses to start while a previous run is in flight.
type Runner struct {
	backend   Backend
	logger    *errors.Logger
	tracer    trace.Tracer
	observers []Observer

	mu       sync.Mutex
	progress Progress
}

// Option configures a Runner
type Option func(*Runner)

// WithObserver subscribes to progress changes
func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observers = append(r.observers, o)
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *errors.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner creates an idle runner
func NewRunner(backend Backend, opts ...Option) *Runner {
	r := &Runner{
		backend:  backend,
		logger:   errors.Discard(),
		tracer:   otel.Tracer("resumetailor.workflow"),
		progress: Progress{Status: StatusIdle, Activity: []string{}},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Progress returns a copy of the current progress
func (r *Runner) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress.clone()
}

// CanSubmit reports whether in could be submitted right now
func (r *Runner) CanSubmit(in Input) bool {
	if validate.Struct(in) != nil {
		return false
	}
	return r.Progress().Status.Settled()
}

// Reset returns the runner to idle and clears the activity log
func (r *Runner) Reset() {
	r.update(func(p *Progress) {
		*p = Progress{Status: StatusIdle, Activity: []string{}}
	})
}

// Validate checks in without running anything
func Validate(in Input) error {
	if err := validate.Struct(in); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidInput, ValidationMessage, err)
	}
	return nil
}

// Run uploads the resume, analyzes the job text, generates the tailored
// resume and fetches its canonical result.
func (r *Runner) Run(ctx context.Context, in Input) (*Outcome, error) {
	if err := Validate(in); err != nil {
		r.update(func(p *Progress) { p.Error = ValidationMessage })
		return nil, err
	}
	if !r.begin() {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "a tailoring run is already in progress", nil)
	}
	in = in.withDefaults()

	ctx, span := r.tracer.Start(ctx, "workflow.run", trace.WithAttributes(
		attribute.String("target_role", in.TargetRole),
		attribute.String("experience_level", in.ExperienceLevel),
	))
	defer span.End()

	outcome, err := r.run(ctx, in)
	if err != nil {
		r.update(func(p *Progress) {
			p.Status = StatusError
			p.Percent = 0
			p.Error = FailureMessage
		})
		r.logger.LogError(err, "Tailoring run failed", "resume", in.ResumeName)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	r.advance(StatusReady, "Tailored files are ready for download")
	span.SetAttributes(attribute.String("result.id", outcome.ID))
	r.logger.Info("Tailored resume generated", "id", outcome.ID, "outputs", len(outcome.Preview.OutputFiles))
	return outcome, nil
}

func (r *Runner) run(ctx context.Context, in Input) (*Outcome, error) {
	parsed, err := r.backend.ParseResumeFile(ctx, in.ResumeName, in.Resume)
	if err != nil {
		return nil, err
	}

	r.advance(StatusAnalyzing, "Analyzing job description and role signals")
	analysis, err := r.backend.AnalyzeJob(ctx, types.AnalyzeJobRequest{
		JobText:         in.JobText,
		TargetRole:      in.TargetRole,
		ExperienceLevel: in.ExperienceLevel,
	})
	if err != nil {
		return nil, err
	}

	r.advance(StatusTailoring, "Drafting tailored bullet points and summaries")
	generated, err := r.backend.Generate(ctx, types.GenerateRequest{
		JobAnalysisID:   analysis.ID,
		ResumeProfileID: parsed.ID,
		TargetRole:      in.TargetRole,
		Style:           in.Style,
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(generated.ID) == "" {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailed, "Failed to generate resume", nil)
	}

	canonical, err := r.backend.GetResult(ctx, generated.ID)
	if err != nil {
		return nil, err
	}
	result := *canonical
	if result.ID == "" {
		result.ID = generated.ID
	}

	outputs := r.backend.OutputFiles(generated.OutputFiles, generated.ID)
	return &Outcome{
		ID:      result.ID,
		Preview: buildPreview(in, parsed, analysis, generated, outputs),
		Result:  workspace.FromResponse(result, r.backend.OutputFiles(result.Outputs, result.ID), in.Style),
	}, nil
}

// begin moves a settled runner into the upload stage
func (r *Runner) begin() bool {
	started := false
	r.update(func(p *Progress) {
		if !p.Status.Settled() {
			return
		}
		started = true
		p.Error = ""
		advanceProgress(p, StatusUploading, "Uploading resume and extracting sections")
	})
	return started
}

func (r *Runner) advance(status Status, activity string) {
	r.update(func(p *Progress) { advanceProgress(p, status, activity) })
}

func advanceProgress(p *Progress, status Status, activity string) {
	p.Status = status
	p.Percent = status.Percent()
	p.Activity = append([]string{activity}, p.Activity...)
	if len(p.Activity) > maxActivity {
		p.Activity = p.Activity[:maxActivity]
	}
}

func (r *Runner) update(fn func(*Progress)) {
	r.mu.Lock()
	fn(&r.progress)
	snapshot := r.progress.clone()
	r.mu.Unlock()

	for _, observer := range r.observers {
		observer(snapshot)
	}
}
