package workspace

import (
	"context"

	"resumetailor/internal/editor"
	"resumetailor/internal/types"
)

// SetStatement replaces the editable statement
func (w *Workspace) SetStatement(statement string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.result.Statement = statement
}

// SetSkills replaces the comma-joined skills text
func (w *Workspace) SetSkills(skills string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.result.Skills = skills
}

// SetStyle selects the style sent with the next regeneration
func (w *Workspace) SetStyle(style types.Style) error {
	if !style.Valid() {
		return errInvalidStyle(style)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.result.Style = style
	return nil
}

// UpdateExperience merges patch into experience entry index
func (w *Workspace) UpdateExperience(ctx context.Context, index int, patch types.ExperiencePatch) []types.ExperienceEntry {
	return w.editExperience(ctx, func(e []types.ExperienceEntry) []types.ExperienceEntry {
		return editor.UpdateEntry(e, index, patch)
	})
}

// UpdateExperienceBullet replaces one bullet of experience entry index
func (w *Workspace) UpdateExperienceBullet(ctx context.Context, index, bullet int, value string) []types.ExperienceEntry {
	return w.editExperience(ctx, func(e []types.ExperienceEntry) []types.ExperienceEntry {
		return editor.UpdateBullet(e, index, bullet, value)
	})
}

// AddExperienceBullet appends an empty bullet to experience entry index
func (w *Workspace) AddExperienceBullet(ctx context.Context, index int) []types.ExperienceEntry {
	return w.editExperience(ctx, func(e []types.ExperienceEntry) []types.ExperienceEntry {
		return editor.AddBullet(e, index)
	})
}

// RemoveExperienceBullet removes one bullet of experience entry index
func (w *Workspace) RemoveExperienceBullet(ctx context.Context, index, bullet int) []types.ExperienceEntry {
	return w.editExperience(ctx, func(e []types.ExperienceEntry) []types.ExperienceEntry {
		return editor.RemoveBullet(e, index, bullet)
	})
}

// AddExperience appends a blank experience entry
func (w *Workspace) AddExperience(ctx context.Context) []types.ExperienceEntry {
	return w.editExperience(ctx, editor.AddEntry[types.ExperienceEntry])
}

// RemoveExperience removes experience entry index
func (w *Workspace) RemoveExperience(ctx context.Context, index int) []types.ExperienceEntry {
	return w.editExperience(ctx, func(e []types.ExperienceEntry) []types.ExperienceEntry {
		return editor.RemoveEntry(e, index)
	})
}

// UpdateEducation merges patch into education entry index
func (w *Workspace) UpdateEducation(ctx context.Context, index int, patch types.EducationPatch) []types.EducationEntry {
	return w.editEducation(ctx, func(e []types.EducationEntry) []types.EducationEntry {
		return editor.UpdateEntry(e, index, patch)
	})
}

// UpdateEducationBullet replaces one bullet of education entry index
func (w *Workspace) UpdateEducationBullet(ctx context.Context, index, bullet int, value string) []types.EducationEntry {
	return w.editEducation(ctx, func(e []types.EducationEntry) []types.EducationEntry {
		return editor.UpdateBullet(e, index, bullet, value)
	})
}

// AddEducationBullet appends an empty bullet to education entry index
func (w *Workspace) AddEducationBullet(ctx context.Context, index int) []types.EducationEntry {
	return w.editEducation(ctx, func(e []types.EducationEntry) []types.EducationEntry {
		return editor.AddBullet(e, index)
	})
}

// RemoveEducationBullet removes one bullet of education entry index
func (w *Workspace) RemoveEducationBullet(ctx context.Context, index, bullet int) []types.EducationEntry {
	return w.editEducation(ctx, func(e []types.EducationEntry) []types.EducationEntry {
		return editor.RemoveBullet(e, index, bullet)
	})
}

// AddEducation appends a blank education entry
func (w *Workspace) AddEducation(ctx context.Context) []types.EducationEntry {
	return w.editEducation(ctx, editor.AddEntry[types.EducationEntry])
}

// RemoveEducation removes education entry index
func (w *Workspace) RemoveEducation(ctx context.Context, index int) []types.EducationEntry {
	return w.editEducation(ctx, func(e []types.EducationEntry) []types.EducationEntry {
		return editor.RemoveEntry(e, index)
	})
}

// editExperience applies fn and writes the new section through to the drafts.
// The save happens under the lock so persisted order matches edit order.
func (w *Workspace) editExperience(ctx context.Context, fn func([]types.ExperienceEntry) []types.ExperienceEntry) []types.ExperienceEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.result.Experience = fn(w.result.Experience)
	w.drafts.SaveExperience(ctx, w.result.ID, w.result.Experience)
	return types.CloneExperience(w.result.Experience)
}

func (w *Workspace) editEducation(ctx context.Context, fn func([]types.EducationEntry) []types.EducationEntry) []types.EducationEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.result.Education = fn(w.result.Education)
	w.drafts.SaveEducation(ctx, w.result.ID, w.result.Education)
	return types.CloneEducation(w.result.Education)
}
