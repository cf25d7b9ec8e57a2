package workflow

import (
	"slices"
	"strings"

	"resumetailor/internal/types"
)

var defaultGaps = []string{"Metrics definition", "Workshop facilitation", "Cross-functional leadership"}

// estimateMatchScore grows with job description detail and caps at 96
func estimateMatchScore(jobText string) int {
	return min(96, 60+len(jobText)/55)
}

// gapsFor lists focus areas the job asks for that the signals do not cover
func gapsFor(focus []string) []string {
	if len(focus) == 0 {
		return slices.Clone(defaultGaps)
	}
	var gaps []string
	if !slices.Contains(focus, "metrics") {
		gaps = append(gaps, "Metrics definition")
	}
	if !slices.Contains(focus, "stakeholder") {
		gaps = append(gaps, "Stakeholder alignment")
	}
	if !slices.Contains(focus, "accessibility") {
		gaps = append(gaps, "Accessibility coverage")
	}
	if len(gaps) == 0 {
		return slices.Clone(defaultGaps)
	}
	return gaps
}

func buildPreview(in Input, parsed *types.ParseResumeResponse, analysis *types.AnalyzeJobResponse, generated *types.GenerateResponse, outputs []types.OutputFile) Preview {
	name := "Candidate"
	if parsed.ParsedData.Name != nil && strings.TrimSpace(*parsed.ParsedData.Name) != "" {
		name = *parsed.ParsedData.Name
	}
	bullets := slices.Clone(generated.TailoredBullets)
	if bullets == nil {
		bullets = []string{}
	}
	keywords := slices.Clone(analysis.Keywords)
	if keywords == nil {
		keywords = []string{}
	}
	return Preview{
		CandidateName:    name,
		CurrentTitle:     in.TargetRole,
		MatchScore:       estimateMatchScore(in.JobText),
		Keywords:         keywords,
		Gaps:             gapsFor(analysis.Signals.Focus),
		Highlights:       bullets,
		SuggestedBullets: slices.Clone(bullets),
		OutputFiles:      outputs,
	}
}
