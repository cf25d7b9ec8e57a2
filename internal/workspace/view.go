package workspace

import (
	"fmt"
	"path"
	"strings"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"
)

// Tab is one panel of the result view
type Tab string

const (
	TabOverview   Tab = "Overview"
	TabSummary    Tab = "Summary"
	TabSkills     Tab = "Skills"
	TabExperience Tab = "Experience"
	TabEducation  Tab = "Education"
	TabReview     Tab = "Review"

	DefaultTab = TabOverview
)

// Tabs lists the panels in display order
var Tabs = []Tab{TabOverview, TabSummary, TabSkills, TabExperience, TabEducation, TabReview}

// ParseTab resolves a tab name case-insensitively
func ParseTab(value string) (Tab, error) {
	trimmed := strings.TrimSpace(value)
	for _, tab := range Tabs {
		if strings.EqualFold(trimmed, string(tab)) {
			return tab, nil
		}
	}
	return "", errors.NewValidationError(errors.ErrCodeInvalidInput, fmt.Sprintf("unknown tab %q", value), nil)
}

// previewExtension is the document format the preview endpoint can render
const previewExtension = ".pdf"

// View is derived from a result and never stored
type View struct {
	DownloadReady bool              `json:"downloadReady"`
	PrimaryFile   *types.OutputFile `json:"primaryFile,omitempty"`
	PreviewFile   *types.OutputFile `json:"previewFile,omitempty"`
	OpenFile      *types.OutputFile `json:"openFile,omitempty"`
	ActiveTab     Tab               `json:"activeTab"`
}

// Visible reports whether tab's panel is shown
func (v View) Visible(tab Tab) bool {
	return v.ActiveTab == tab
}

// Project derives the view for result with tab selected
func Project(result types.TailoringResult, tab Tab) View {
	view := View{
		DownloadReady: len(result.Outputs) > 0,
		ActiveTab:     tab,
	}
	if len(result.Outputs) > 0 {
		primary := result.Outputs[0]
		view.PrimaryFile = &primary
	}
	for _, file := range result.Outputs {
		if strings.EqualFold(path.Ext(file.Name), previewExtension) {
			preview := file
			view.PreviewFile = &preview
			break
		}
	}
	view.OpenFile = view.PreviewFile
	if view.OpenFile == nil {
		view.OpenFile = view.PrimaryFile
	}
	return view
}

// View projects the current result
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Project(w.result, w.tab)
}

// SelectTab switches the visible panel
func (w *Workspace) SelectTab(tab Tab) error {
	parsed, err := ParseTab(string(tab))
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tab = parsed
	return nil
}
