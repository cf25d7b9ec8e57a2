package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumetailor/internal/types"
	"resumetailor/internal/workflow"
	"resumetailor/internal/workspace"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "TailoringResult", &ResultTextFormatter{})
	registry.RegisterFormatter("markdown", "TailoringResult", &ResultMarkdownFormatter{})
	registry.RegisterFormatter("text", "Document", &DocumentTextFormatter{})
	registry.RegisterFormatter("markdown", "Document", &DocumentMarkdownFormatter{})
	registry.RegisterFormatter("text", "Outcome", &OutcomeTextFormatter{})
	registry.RegisterFormatter("markdown", "Outcome", &OutcomeMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func deref(data any) any {
	switch v := data.(type) {
	case *types.TailoringResult:
		if v != nil {
			return *v
		}
	case *workspace.Document:
		if v != nil {
			return *v
		}
	case *workflow.Outcome:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.TailoringResult:
		return "TailoringResult"
	case workspace.Document:
		return "Document"
	case workflow.Outcome:
		return "Outcome"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ResultTextFormatter renders a tailoring result as plain text
type ResultTextFormatter struct{}

func (rtf *ResultTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailoringResult)
	if !ok {
		return "", fmt.Errorf("expected TailoringResult, got %T", data)
	}
	var output strings.Builder
	writeResultText(&output, result)
	return output.String(), nil
}

func (rtf *ResultTextFormatter) SupportedType() string {
	return "TailoringResult"
}

// ResultMarkdownFormatter renders a tailoring result as markdown
type ResultMarkdownFormatter struct{}

func (rmf *ResultMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.TailoringResult)
	if !ok {
		return "", fmt.Errorf("expected TailoringResult, got %T", data)
	}
	var output strings.Builder
	writeResultMarkdown(&output, result)
	return output.String(), nil
}

func (rmf *ResultMarkdownFormatter) SupportedType() string {
	return "TailoringResult"
}

// DocumentTextFormatter adds workspace status and files to the result text
type DocumentTextFormatter struct{}

func (dtf *DocumentTextFormatter) Format(data any) (string, error) {
	doc, ok := data.(workspace.Document)
	if !ok {
		return "", fmt.Errorf("expected Document, got %T", data)
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Status: %s\n", doc.Status.State))
	if doc.Status.Message != "" {
		output.WriteString(fmt.Sprintf("Error: %s\n", doc.Status.Message))
	}
	if doc.View.OpenFile != nil {
		output.WriteString(fmt.Sprintf("Open: %s\n", fileURL(*doc.View.OpenFile)))
	} else {
		output.WriteString("Open: no files yet\n")
	}
	output.WriteString("\n")
	writeResultText(&output, doc.Result)
	return output.String(), nil
}

func (dtf *DocumentTextFormatter) SupportedType() string {
	return "Document"
}

// DocumentMarkdownFormatter adds workspace status and files to the result markdown
type DocumentMarkdownFormatter struct{}

func (dmf *DocumentMarkdownFormatter) Format(data any) (string, error) {
	doc, ok := data.(workspace.Document)
	if !ok {
		return "", fmt.Errorf("expected Document, got %T", data)
	}

	var output strings.Builder
	writeResultMarkdown(&output, doc.Result)
	output.WriteString(fmt.Sprintf("\n---\n\n**Status:** %s", doc.Status.State))
	if doc.Status.Message != "" {
		output.WriteString(fmt.Sprintf(" (%s)", doc.Status.Message))
	}
	output.WriteString("\n")
	if doc.View.OpenFile != nil {
		output.WriteString(fmt.Sprintf("\n[Open %s](%s)\n", doc.View.OpenFile.Name, fileURL(*doc.View.OpenFile)))
	}
	return output.String(), nil
}

func (dmf *DocumentMarkdownFormatter) SupportedType() string {
	return "Document"
}

// OutcomeTextFormatter renders a finished tailoring run as plain text
type OutcomeTextFormatter struct{}

func (otf *OutcomeTextFormatter) Format(data any) (string, error) {
	outcome, ok := data.(workflow.Outcome)
	if !ok {
		return "", fmt.Errorf("expected Outcome, got %T", data)
	}
	preview := outcome.Preview

	var output strings.Builder
	output.WriteString("=== TAILORED RESUME READY ===\n")
	output.WriteString(fmt.Sprintf("ID: %s\n", outcome.ID))
	output.WriteString(fmt.Sprintf("Workspace: %s\n", outcome.Path()))
	output.WriteString(fmt.Sprintf("Candidate: %s (%s)\n", preview.CandidateName, preview.CurrentTitle))
	output.WriteString(fmt.Sprintf("Estimated match: %d%%\n\n", preview.MatchScore))

	writeList(&output, "Keywords", preview.Keywords, "- ")
	writeList(&output, "Gaps", preview.Gaps, "- ")
	writeList(&output, "Highlights", preview.Highlights, "- ")

	output.WriteString("Files:\n")
	for _, file := range preview.OutputFiles {
		output.WriteString(fmt.Sprintf("- %s: %s\n", file.Name, file.DownloadURL))
	}
	return output.String(), nil
}

func (otf *OutcomeTextFormatter) SupportedType() string {
	return "Outcome"
}

// OutcomeMarkdownFormatter renders a finished tailoring run as markdown
type OutcomeMarkdownFormatter struct{}

func (omf *OutcomeMarkdownFormatter) Format(data any) (string, error) {
	outcome, ok := data.(workflow.Outcome)
	if !ok {
		return "", fmt.Errorf("expected Outcome, got %T", data)
	}
	preview := outcome.Preview

	var output strings.Builder
	output.WriteString(fmt.Sprintf("# %s\n\n", preview.CandidateName))
	output.WriteString(fmt.Sprintf("**Target role:** %s  \n", preview.CurrentTitle))
	output.WriteString(fmt.Sprintf("**Estimated match:** %d%%  \n", preview.MatchScore))
	output.WriteString(fmt.Sprintf("**Workspace:** `%s`\n\n", outcome.Path()))

	writeMarkdownList(&output, "Keywords", preview.Keywords)
	writeMarkdownList(&output, "Gaps", preview.Gaps)
	writeMarkdownList(&output, "Highlights", preview.Highlights)

	if len(preview.OutputFiles) > 0 {
		output.WriteString("## Files\n\n")
		for _, file := range preview.OutputFiles {
			output.WriteString(fmt.Sprintf("- [%s](%s)\n", file.Name, file.DownloadURL))
		}
	}
	return output.String(), nil
}

func (omf *OutcomeMarkdownFormatter) SupportedType() string {
	return "Outcome"
}

func writeResultText(output *strings.Builder, result types.TailoringResult) {
	output.WriteString("=== TAILORED RESUME ===\n")
	output.WriteString(fmt.Sprintf("ID: %s\n", result.ID))
	if result.CandidateName != "" {
		output.WriteString(fmt.Sprintf("Candidate: %s\n", result.CandidateName))
	}
	if result.TargetRole != "" {
		output.WriteString(fmt.Sprintf("Target role: %s\n", result.TargetRole))
	}
	output.WriteString(fmt.Sprintf("Match score: %.0f\n", result.MatchScore))
	output.WriteString(fmt.Sprintf("Style: %s\n\n", result.Style))

	if result.Summary != "" {
		output.WriteString("Summary:\n")
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}
	if result.Statement != "" {
		output.WriteString("Statement:\n")
		output.WriteString(result.Statement)
		output.WriteString("\n\n")
	}
	if result.Skills != "" {
		output.WriteString(fmt.Sprintf("Skills: %s\n\n", result.Skills))
	}
	writeList(output, "Keywords", result.Keywords, "- ")

	output.WriteString("=== EXPERIENCE ===\n")
	for i, entry := range result.Experience {
		output.WriteString(fmt.Sprintf("[%d] %s\n", i, joinNonEmpty(" at ", entry.Title, entry.Company)))
		if dates := joinNonEmpty(" - ", entry.StartDate, entry.EndDate); dates != "" {
			output.WriteString(fmt.Sprintf("    %s\n", joinNonEmpty(", ", dates, entry.Location)))
		}
		for j, bullet := range entry.Bullets {
			output.WriteString(fmt.Sprintf("    %d. %s\n", j, bullet))
		}
	}
	output.WriteString("\n=== EDUCATION ===\n")
	for i, entry := range result.Education {
		output.WriteString(fmt.Sprintf("[%d] %s\n", i, joinNonEmpty(", ", entry.Degree, entry.FieldOfStudy, entry.Institution)))
		if dates := joinNonEmpty(" - ", entry.StartDate, entry.EndDate); dates != "" {
			output.WriteString(fmt.Sprintf("    %s\n", dates))
		}
		for j, bullet := range entry.Bullets {
			output.WriteString(fmt.Sprintf("    %d. %s\n", j, bullet))
		}
	}

	output.WriteString("\n=== FILES ===\n")
	if len(result.Outputs) == 0 {
		output.WriteString("No files yet\n")
	}
	for _, file := range result.Outputs {
		output.WriteString(fmt.Sprintf("- %s: %s\n", file.Name, file.DownloadURL))
	}
}

func writeResultMarkdown(output *strings.Builder, result types.TailoringResult) {
	title := result.CandidateName
	if title == "" {
		title = "Tailored Resume"
	}
	output.WriteString(fmt.Sprintf("# %s\n\n", title))
	output.WriteString(fmt.Sprintf("**ID:** `%s`  \n", result.ID))
	output.WriteString(fmt.Sprintf("**Match score:** %.0f  \n", result.MatchScore))
	output.WriteString(fmt.Sprintf("**Style:** %s\n\n", result.Style))

	if result.Summary != "" {
		output.WriteString("## Summary\n\n")
		output.WriteString(result.Summary)
		output.WriteString("\n\n")
	}
	if result.Statement != "" {
		output.WriteString("## Statement\n\n")
		output.WriteString(result.Statement)
		output.WriteString("\n\n")
	}
	if result.Skills != "" {
		output.WriteString("## Skills\n\n")
		output.WriteString(result.Skills)
		output.WriteString("\n\n")
	}

	if len(result.Experience) > 0 {
		output.WriteString("## Experience\n\n")
		for _, entry := range result.Experience {
			output.WriteString(fmt.Sprintf("### %s\n\n", joinNonEmpty(", ", entry.Title, entry.Company)))
			if dates := joinNonEmpty(" - ", entry.StartDate, entry.EndDate); dates != "" {
				output.WriteString(fmt.Sprintf("*%s*\n\n", joinNonEmpty(", ", dates, entry.Location)))
			}
			for _, bullet := range entry.Bullets {
				output.WriteString(fmt.Sprintf("- %s\n", bullet))
			}
			output.WriteString("\n")
		}
	}

	if len(result.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, entry := range result.Education {
			output.WriteString(fmt.Sprintf("### %s\n\n", joinNonEmpty(", ", entry.Degree, entry.FieldOfStudy, entry.Institution)))
			for _, bullet := range entry.Bullets {
				output.WriteString(fmt.Sprintf("- %s\n", bullet))
			}
			output.WriteString("\n")
		}
	}

	if len(result.Outputs) > 0 {
		output.WriteString("## Files\n\n")
		for _, file := range result.Outputs {
			output.WriteString(fmt.Sprintf("- [%s](%s)\n", file.Name, file.DownloadURL))
		}
	}
}

func writeList(output *strings.Builder, title string, items []string, prefix string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(title + ":\n")
	for _, item := range items {
		output.WriteString(prefix + item + "\n")
	}
	output.WriteString("\n")
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(fmt.Sprintf("## %s\n\n", title))
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
	output.WriteString("\n")
}

func fileURL(file types.OutputFile) string {
	if file.PreviewURL != "" {
		return file.PreviewURL
	}
	return file.DownloadURL
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
