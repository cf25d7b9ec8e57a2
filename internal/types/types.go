package types

import (
	"fmt"
	"strings"
	"time"
)

// Style is the visual template a tailored resume is rendered with
type Style string

const (
	StyleSlim   Style = "Slim"
	StyleModern Style = "Modern"
	StyleFancy  Style = "Fancy"

	DefaultStyle = StyleModern
)

// Styles lists every supported style in display order
var Styles = []Style{StyleSlim, StyleModern, StyleFancy}

// Valid reports whether s is one of the known styles
func (s Style) Valid() bool {
	for _, known := range Styles {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStyle resolves a style name case-insensitively
func ParseStyle(value string) (Style, error) {
	trimmed := strings.TrimSpace(value)
	for _, known := range Styles {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown style %q (expected one of Slim, Modern, Fancy)", value)
}

// Signals groups the job-analysis signals shown next to a result
type Signals struct {
	Levels []string `json:"levels"`
	Tools  []string `json:"tools"`
	Focus  []string `json:"focus"`
}

// OutputFile is one downloadable artifact of a tailored resume
type OutputFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"downloadUrl"`
	PreviewURL  string `json:"previewUrl,omitempty"`
}

// ExperienceEntry is one position in the experience section
type ExperienceEntry struct {
	Title     string   `json:"title"`
	Company   string   `json:"company"`
	Location  string   `json:"location"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
	Bullets   []string `json:"bullets"`
}

// EducationEntry is one record in the education section
type EducationEntry struct {
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	FieldOfStudy string   `json:"field_of_study"`
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	Bullets      []string `json:"bullets"`
}

// BulletList returns the entry's bullets, never nil
func (e ExperienceEntry) BulletList() []string {
	if e.Bullets == nil {
		return []string{}
	}
	return e.Bullets
}

// WithBullets returns a copy of the entry carrying bullets
func (e ExperienceEntry) WithBullets(bullets []string) ExperienceEntry {
	e.Bullets = bullets
	return e
}

// BulletList returns the entry's bullets, never nil
func (e EducationEntry) BulletList() []string {
	if e.Bullets == nil {
		return []string{}
	}
	return e.Bullets
}

// WithBullets returns a copy of the entry carrying bullets
func (e EducationEntry) WithBullets(bullets []string) EducationEntry {
	e.Bullets = bullets
	return e
}

// ExperiencePatch holds a partial update; nil fields are left alone
type ExperiencePatch struct {
	Title     *string   `json:"title,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Location  *string   `json:"location,omitempty"`
	StartDate *string   `json:"start_date,omitempty"`
	EndDate   *string   `json:"end_date,omitempty"`
	Bullets   *[]string `json:"bullets,omitempty"`
}

// Apply merges the patch into e and returns the result
func (p ExperiencePatch) Apply(e ExperienceEntry) ExperienceEntry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Company != nil {
		e.Company = *p.Company
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.Bullets != nil {
		e.Bullets = append([]string{}, (*p.Bullets)...)
	}
	return e
}

// EducationPatch holds a partial update; nil fields are left alone
type EducationPatch struct {
	Institution  *string   `json:"institution,omitempty"`
	Degree       *string   `json:"degree,omitempty"`
	FieldOfStudy *string   `json:"field_of_study,omitempty"`
	StartDate    *string   `json:"start_date,omitempty"`
	EndDate      *string   `json:"end_date,omitempty"`
	Bullets      *[]string `json:"bullets,omitempty"`
}

// Apply merges the patch into e and returns the result
func (p EducationPatch) Apply(e EducationEntry) EducationEntry {
	if p.Institution != nil {
		e.Institution = *p.Institution
	}
	if p.Degree != nil {
		e.Degree = *p.Degree
	}
	if p.FieldOfStudy != nil {
		e.FieldOfStudy = *p.FieldOfStudy
	}
	if p.StartDate != nil {
		e.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		e.EndDate = *p.EndDate
	}
	if p.Bullets != nil {
		e.Bullets = append([]string{}, (*p.Bullets)...)
	}
	return e
}

// TailoringResult is the complete editable state of one generated resume.
// Skills is kept as the comma-joined string the user edits; it is split
// into tokens only when a regeneration payload is built.
type TailoringResult struct {
	ID            string            `json:"id"`
	MatchScore    float64           `json:"matchScore"`
	Summary       string            `json:"summary"`
	Keywords      []string          `json:"keywords"`
	Signals       Signals           `json:"signals"`
	Outputs       []OutputFile      `json:"outputs"`
	Statement     string            `json:"statement"`
	Skills        string            `json:"skills"`
	Experience    []ExperienceEntry `json:"experience"`
	Education     []EducationEntry  `json:"education"`
	Style         Style             `json:"style"`
	TargetRole    string            `json:"targetRole,omitempty"`
	CandidateName string            `json:"candidateName,omitempty"`
	CreatedAt     time.Time         `json:"createdAt,omitzero"`
}

// Clone returns a deep copy that shares no slices with r
func (r TailoringResult) Clone() TailoringResult {
	out := r
	out.Keywords = cloneStrings(r.Keywords)
	out.Signals = Signals{
		Levels: cloneStrings(r.Signals.Levels),
		Tools:  cloneStrings(r.Signals.Tools),
		Focus:  cloneStrings(r.Signals.Focus),
	}
	out.Outputs = append([]OutputFile{}, r.Outputs...)
	out.Experience = CloneExperience(r.Experience)
	out.Education = CloneEducation(r.Education)
	return out
}

// CloneExperience deep-copies entries including their bullets
func CloneExperience(entries []ExperienceEntry) []ExperienceEntry {
	out := make([]ExperienceEntry, len(entries))
	for i, entry := range entries {
		out[i] = entry.WithBullets(cloneStrings(entry.BulletList()))
	}
	return out
}

// CloneEducation deep-copies entries including their bullets
func CloneEducation(entries []EducationEntry) []EducationEntry {
	out := make([]EducationEntry, len(entries))
	for i, entry := range entries {
		out[i] = entry.WithBullets(cloneStrings(entry.BulletList()))
	}
	return out
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
