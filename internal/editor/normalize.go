package editor

import "strings"

// NormalizeBullets trims every bullet and drops the ones left empty
func NormalizeBullets(bullets []string) []string {
	out := make([]string, 0, len(bullets))
	for _, bullet := range bullets {
		if trimmed := strings.TrimSpace(bullet); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// SplitSkills turns the editable comma-joined skills string into ordered tokens
func SplitSkills(skills string) []string {
	return NormalizeBullets(strings.Split(skills, ","))
}

// JoinSkills is the inverse used when a server skill list becomes editable text
func JoinSkills(skills []string) string {
	return strings.Join(skills, ", ")
}

// TrimOrNil trims value and returns nil when nothing is left
func TrimOrNil(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
