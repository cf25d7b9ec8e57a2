package types

import "time"

// ResultResponse is the backend's canonical representation of a result
type ResultResponse struct {
	ID            string              `json:"id"`
	MatchScore    float64             `json:"match_score"`
	Summary       string              `json:"summary"`
	Keywords      []string            `json:"keywords"`
	Signals       map[string][]string `json:"signals"`
	Outputs       []string            `json:"outputs"`
	Statement     *string             `json:"statement"`
	Skills        []string            `json:"skills"`
	Experience    []ExperienceEntry   `json:"experience"`
	Education     []EducationEntry    `json:"education"`
	TargetRole    *string             `json:"target_role"`
	Style         *string             `json:"style"`
	CandidateName *string             `json:"candidate_name"`
	CreatedAt     *time.Time          `json:"created_at"`
}

// SignalSet converts the loosely typed signals map, missing keys become empty
func (r ResultResponse) SignalSet() Signals {
	return Signals{
		Levels: nonNil(r.Signals["levels"]),
		Tools:  nonNil(r.Signals["tools"]),
		Focus:  nonNil(r.Signals["focus"]),
	}
}

// RegenerateExperience is an experience entry as submitted for regeneration
type RegenerateExperience struct {
	Title     *string  `json:"title"`
	Company   *string  `json:"company"`
	Location  *string  `json:"location"`
	StartDate *string  `json:"start_date"`
	EndDate   *string  `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// RegenerateEducation is an education entry as submitted for regeneration
type RegenerateEducation struct {
	Institution  *string  `json:"institution"`
	Degree       *string  `json:"degree"`
	FieldOfStudy *string  `json:"field_of_study"`
	StartDate    *string  `json:"start_date"`
	EndDate      *string  `json:"end_date"`
	Bullets      []string `json:"bullets"`
}

// RegenerateRequest is the normalized payload for POST /tailor/regenerate/{id}
type RegenerateRequest struct {
	Statement  *string                `json:"statement"`
	Skills     []string               `json:"skills"`
	Experience []RegenerateExperience `json:"experience"`
	Education  []RegenerateEducation  `json:"education"`
	Style      Style                  `json:"style"`
}

// RegenerateResponse carries the id of the regenerated result
type RegenerateResponse struct {
	ID string `json:"id"`
}

// ParsedResume is the profile the backend extracts from an uploaded file
type ParsedResume struct {
	Name   *string  `json:"name"`
	Email  *string  `json:"email"`
	Phone  *string  `json:"phone"`
	Skills []string `json:"skills"`
}

// ParseResumeResponse is returned by POST /tailor/parse-resume-file
type ParseResumeResponse struct {
	ID         string       `json:"id"`
	FileName   *string      `json:"file_name"`
	ParsedData ParsedResume `json:"parsed_data"`
}

// AnalyzeJobRequest is the body of POST /tailor/analyze-job
type AnalyzeJobRequest struct {
	JobText         string `json:"job_text" validate:"required,min=30"`
	TargetRole      string `json:"target_role,omitempty"`
	ExperienceLevel string `json:"experience_level,omitempty"`
}

// AnalyzeJobResponse is returned by POST /tailor/analyze-job
type AnalyzeJobResponse struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
	Signals  Signals  `json:"signals"`
	Summary  string   `json:"summary"`
}

// GenerateRequest is the body of POST /tailor/generate
type GenerateRequest struct {
	JobAnalysisID   string `json:"job_analysis_id" validate:"required"`
	ResumeProfileID string `json:"resume_profile_id" validate:"required"`
	TargetRole      string `json:"target_role,omitempty"`
	Style           Style  `json:"style,omitempty"`
}

// GenerateResponse is returned by POST /tailor/generate
type GenerateResponse struct {
	ID              string   `json:"id"`
	TailoredSummary string   `json:"tailored_summary"`
	TailoredBullets []string `json:"tailored_bullets"`
	OutputFiles     []string `json:"output_files"`
}

// ErrorResponse is the JSON error body shared by the backend and the local server
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
