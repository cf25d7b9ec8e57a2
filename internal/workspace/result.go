package workspace

import (
	"resumetailor/internal/editor"
	"resumetailor/internal/types"
)

// FromResponse maps a canonical backend payload onto the editable result.
// Missing collections become empty and a missing or unknown style falls back
// to fallback. outputs must already be resolved against the payload's id.
func FromResponse(resp types.ResultResponse, outputs []types.OutputFile, fallback types.Style) types.TailoringResult {
	style := fallback
	if resp.Style != nil {
		if parsed, err := types.ParseStyle(*resp.Style); err == nil {
			style = parsed
		}
	}
	if !style.Valid() {
		style = types.DefaultStyle
	}

	result := types.TailoringResult{
		ID:         resp.ID,
		MatchScore: resp.MatchScore,
		Summary:    resp.Summary,
		Keywords:   append([]string{}, resp.Keywords...),
		Signals:    resp.SignalSet(),
		Outputs:    append([]types.OutputFile{}, outputs...),
		Skills:     editor.JoinSkills(resp.Skills),
		Experience: types.CloneExperience(resp.Experience),
		Education:  types.CloneEducation(resp.Education),
		Style:      style,
	}
	if resp.Statement != nil {
		result.Statement = *resp.Statement
	}
	if resp.TargetRole != nil {
		result.TargetRole = *resp.TargetRole
	}
	if resp.CandidateName != nil {
		result.CandidateName = *resp.CandidateName
	}
	if resp.CreatedAt != nil {
		result.CreatedAt = *resp.CreatedAt
	}
	return result.Clone()
}
