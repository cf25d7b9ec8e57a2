package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumetailor/internal/types"
	"resumetailor/internal/workflow"
	"resumetailor/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() types.TailoringResult {
	return types.TailoringResult{
		ID:            "xyz789",
		MatchScore:    88,
		Summary:       "Strong platform fit",
		Keywords:      []string{"go", "grpc"},
		Skills:        "Go, Rust",
		Style:         types.StyleFancy,
		CandidateName: "Jane Doe",
		Experience: []types.ExperienceEntry{{
			Title: "Staff Engineer", Company: "Acme", StartDate: "2020", EndDate: "2024",
			Bullets: []string{"Led platform migration"},
		}},
		Education: []types.EducationEntry{{Institution: "MIT", Degree: "BSc", FieldOfStudy: "CS"}},
		Outputs: []types.OutputFile{{
			Name:        "Resume-tailored.pdf",
			DownloadURL: "http://localhost:8000/tailor/download/xyz789/Resume-tailored.pdf",
			PreviewURL:  "http://localhost:8000/tailor/preview/xyz789/Resume-tailored.pdf",
		}},
	}
}

func TestFormatResult(t *testing.T) {
	registry := NewFormatterRegistry()
	result := sampleResult()

	text, err := registry.Format(result, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "ID: xyz789")
	assert.Contains(t, text, "[0] Staff Engineer at Acme")
	assert.Contains(t, text, "0. Led platform migration")
	assert.Contains(t, text, "[0] BSc, CS, MIT")

	md, err := registry.Format(&result, "markdown")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Jane Doe\n"))
	assert.Contains(t, md, "- [Resume-tailored.pdf](http://localhost:8000/tailor/download/xyz789/Resume-tailored.pdf)")

	raw, err := registry.Format(result, "json")
	require.NoError(t, err)
	var decoded types.TailoringResult
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "xyz789", decoded.ID)
}

func TestFormatDocument(t *testing.T) {
	result := sampleResult()
	doc := workspace.Document{
		Result: result,
		Status: workspace.Status{State: workspace.StateFailed, Message: workspace.UserErrorMessage},
		View:   workspace.Project(result, workspace.DefaultTab),
	}

	text, err := GlobalRegistry.Format(doc, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Status: failed")
	assert.Contains(t, text, "Error: Unable to update the resume. Try again.")
	assert.Contains(t, text, "Open: http://localhost:8000/tailor/preview/xyz789/Resume-tailored.pdf")
}

func TestFormatOutcome(t *testing.T) {
	outcome := &workflow.Outcome{
		ID: "res-1",
		Preview: workflow.Preview{
			CandidateName: "Jane Doe",
			CurrentTitle:  "Software Engineer",
			MatchScore:    72,
			Gaps:          []string{"Metrics definition"},
		},
	}

	text, err := GlobalRegistry.Format(outcome, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Workspace: /analysis/res-1")
	assert.Contains(t, text, "Estimated match: 72%")
	assert.Contains(t, text, "- Metrics definition")
}

func TestFormatUnknown(t *testing.T) {
	_, err := GlobalRegistry.Format(sampleResult(), "xml")
	assert.Error(t, err)

	_, err = GlobalRegistry.Format([]string{"a"}, "text")
	assert.Error(t, err, "text has no generic fallback")

	assert.Equal(t, []string{"json", "markdown", "text"}, GlobalRegistry.GetSupportedFormats())
}
