package workflow

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"

	"resumetailor/internal/client"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobText = "We need a backend engineer who ships reliable Go services and mentors others."

type fakeBackend struct {
	failAt   string
	noID     bool
	analyzed types.AnalyzeJobRequest
	genReq   types.GenerateRequest
	uploaded string
}

func (f *fakeBackend) ParseResumeFile(_ context.Context, name string, content io.Reader) (*types.ParseResumeResponse, error) {
	if f.failAt == "parse" {
		return nil, stderrors.New("upload failed")
	}
	data, _ := io.ReadAll(content)
	f.uploaded = name + ":" + string(data)
	candidate := "Jane Doe"
	return &types.ParseResumeResponse{ID: "profile-1", ParsedData: types.ParsedResume{Name: &candidate}}, nil
}

func (f *fakeBackend) AnalyzeJob(_ context.Context, req types.AnalyzeJobRequest) (*types.AnalyzeJobResponse, error) {
	if f.failAt == "analyze" {
		return nil, stderrors.New("analyze failed")
	}
	f.analyzed = req
	return &types.AnalyzeJobResponse{
		ID:       "job-1",
		Keywords: []string{"go", "mentoring"},
		Signals:  types.Signals{Focus: []string{"metrics"}},
	}, nil
}

func (f *fakeBackend) Generate(_ context.Context, req types.GenerateRequest) (*types.GenerateResponse, error) {
	if f.failAt == "generate" {
		return nil, stderrors.New("generate failed")
	}
	f.genReq = req
	return &types.GenerateResponse{
		ID:              "res-1",
		TailoredBullets: []string{"Led migration"},
		OutputFiles:     []string{"tailored/res-1/Resume-tailored.pdf"},
	}, nil
}

func (f *fakeBackend) GetResult(_ context.Context, id string) (*types.ResultResponse, error) {
	if f.failAt == "result" {
		return nil, stderrors.New("fetch failed")
	}
	if f.noID {
		id = ""
	}
	return &types.ResultResponse{
		ID:       id,
		Summary:  "Tailored",
		Outputs:  []string{"tailored/res-1/Resume-tailored.pdf"},
		Skills:   []string{"Go", "SQL"},
		Keywords: []string{"go"},
	}, nil
}

func (f *fakeBackend) OutputFiles(paths []string, id string) []types.OutputFile {
	return client.BuildOutputFiles("http://localhost:8000", paths, id)
}

func validInput() Input {
	return Input{ResumeName: "resume.txt", Resume: strings.NewReader("Jane Doe, engineer"), JobText: jobText}
}

func TestRunSuccess(t *testing.T) {
	backend := &fakeBackend{}
	var mu sync.Mutex
	var seen []Progress
	runner := NewRunner(backend, WithObserver(func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, p)
	}))

	outcome, err := runner.Run(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "res-1", outcome.ID)
	assert.Equal(t, "/analysis/res-1", outcome.Path())
	assert.Equal(t, "Go, SQL", outcome.Result.Skills)
	assert.Equal(t, types.StyleModern, outcome.Result.Style)
	assert.Equal(t, "Jane Doe", outcome.Preview.CandidateName)
	assert.Equal(t, DefaultTargetRole, outcome.Preview.CurrentTitle)
	assert.Equal(t, []string{"Stakeholder alignment", "Accessibility coverage"}, outcome.Preview.Gaps)
	require.Len(t, outcome.Preview.OutputFiles, 1)
	assert.Equal(t, "Resume-tailored.pdf", outcome.Preview.OutputFiles[0].Name)

	assert.Equal(t, "resume.txt:Jane Doe, engineer", backend.uploaded)
	assert.Equal(t, DefaultExperienceLevel, backend.analyzed.ExperienceLevel)
	assert.Equal(t, "job-1", backend.genReq.JobAnalysisID)
	assert.Equal(t, "profile-1", backend.genReq.ResumeProfileID)

	var percents []int
	for _, p := range seen {
		percents = append(percents, p.Percent)
	}
	assert.Equal(t, []int{18, 52, 82, 100}, percents)

	final := runner.Progress()
	assert.Equal(t, StatusReady, final.Status)
	assert.Equal(t, "Tailored files are ready for download", final.Activity[0])
	assert.Len(t, final.Activity, 4)
}

func TestRunCanonicalWithoutID(t *testing.T) {
	runner := NewRunner(&fakeBackend{noID: true})

	outcome, err := runner.Run(context.Background(), validInput())
	require.NoError(t, err)

	assert.Equal(t, "res-1", outcome.ID)
	assert.Equal(t, "res-1", outcome.Result.ID)
	assert.Equal(t, "/analysis/res-1", outcome.Path())
	require.Len(t, outcome.Result.Outputs, 1)
	assert.Contains(t, outcome.Result.Outputs[0].DownloadURL, "/tailor/download/res-1/")
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"missing resume", func(in *Input) { in.Resume = nil }},
		{"missing name", func(in *Input) { in.ResumeName = "" }},
		{"short job text", func(in *Input) { in.JobText = "   too short   " }},
		{"unknown style", func(in *Input) { in.Style = "Baroque" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{}
			runner := NewRunner(backend)
			in := validInput()
			tt.mutate(&in)

			_, err := runner.Run(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
			assert.Equal(t, ValidationMessage, runner.Progress().Error)
			assert.Equal(t, StatusIdle, runner.Progress().Status)
			assert.Empty(t, backend.uploaded)
			assert.False(t, runner.CanSubmit(in))
		})
	}
}

func TestRunFailureAtEachStage(t *testing.T) {
	for _, stage := range []string{"parse", "analyze", "generate", "result"} {
		t.Run(stage, func(t *testing.T) {
			runner := NewRunner(&fakeBackend{failAt: stage})

			_, err := runner.Run(context.Background(), validInput())
			require.Error(t, err)

			progress := runner.Progress()
			assert.Equal(t, StatusError, progress.Status)
			assert.Equal(t, 0, progress.Percent)
			assert.Equal(t, FailureMessage, progress.Error)
			assert.True(t, runner.CanSubmit(validInput()), "error state allows a retry")
		})
	}
}

func TestActivityLogIsCapped(t *testing.T) {
	runner := NewRunner(&fakeBackend{})
	for i := 0; i < 3; i++ {
		_, err := runner.Run(context.Background(), validInput())
		require.NoError(t, err)
	}

	activity := runner.Progress().Activity
	assert.Len(t, activity, maxActivity)
	assert.Equal(t, "Tailored files are ready for download", activity[0])

	runner.Reset()
	assert.Empty(t, runner.Progress().Activity)
	assert.Equal(t, StatusIdle, runner.Progress().Status)
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "Ready when you are", StatusIdle.Label())
	assert.Equal(t, "Mapping job requirements", StatusAnalyzing.Label())
	assert.Equal(t, "We could not finish this request", Progress{Status: StatusError}.Label())
	assert.False(t, StatusTailoring.Settled())
}

func TestEstimateMatchScore(t *testing.T) {
	assert.Equal(t, 60, estimateMatchScore(""))
	assert.Equal(t, 61, estimateMatchScore(strings.Repeat("x", 55)))
	assert.Equal(t, 96, estimateMatchScore(strings.Repeat("x", 10000)))
}

func TestGapsFor(t *testing.T) {
	assert.Equal(t, defaultGaps, gapsFor(nil))
	assert.Equal(t, defaultGaps, gapsFor([]string{"metrics", "stakeholder", "accessibility"}))
	assert.Equal(t, []string{"Metrics definition"}, gapsFor([]string{"stakeholder", "accessibility"}))
}
