package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"resumetailor/internal/editor"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AnalysisPath is the address of a result's workspace
func AnalysisPath(id string) string {
	return "/analysis/" + url.PathEscape(id)
}

// BuildPayload normalizes an editable result into a regeneration request.
// The same result always yields the same request.
func BuildPayload(result types.TailoringResult) types.RegenerateRequest {
	req := types.RegenerateRequest{
		Statement:  editor.TrimOrNil(result.Statement),
		Skills:     editor.SplitSkills(result.Skills),
		Experience: make([]types.RegenerateExperience, 0, len(result.Experience)),
		Education:  make([]types.RegenerateEducation, 0, len(result.Education)),
		Style:      result.Style,
	}
	for _, e := range result.Experience {
		req.Experience = append(req.Experience, types.RegenerateExperience{
			Title:     editor.TrimOrNil(e.Title),
			Company:   editor.TrimOrNil(e.Company),
			Location:  editor.TrimOrNil(e.Location),
			StartDate: editor.TrimOrNil(e.StartDate),
			EndDate:   editor.TrimOrNil(e.EndDate),
			Bullets:   editor.NormalizeBullets(e.Bullets),
		})
	}
	for _, e := range result.Education {
		req.Education = append(req.Education, types.RegenerateEducation{
			Institution:  editor.TrimOrNil(e.Institution),
			Degree:       editor.TrimOrNil(e.Degree),
			FieldOfStudy: editor.TrimOrNil(e.FieldOfStudy),
			StartDate:    editor.TrimOrNil(e.StartDate),
			EndDate:      editor.TrimOrNil(e.EndDate),
			Bullets:      editor.NormalizeBullets(e.Bullets),
		})
	}
	return req
}

// BuildPayload returns the request the next Regenerate would submit
func (w *Workspace) BuildPayload() types.RegenerateRequest {
	w.mu.Lock()
	defer w.mu.Unlock()
	return BuildPayload(w.result)
}

// PayloadJSON returns the encoded request body
func (w *Workspace) PayloadJSON() ([]byte, error) {
	data, err := json.Marshal(w.BuildPayload())
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode regenerate payload", err)
	}
	return data, nil
}

// Regenerate submits the current edits, fetches the canonical result for the
// returned id and adopts it in one step. On any failure the result is left
// exactly as it was and the status becomes StateFailed with UserErrorMessage.
//
// Invocations are numbered. When a newer Regenerate has started by the time
// a response arrives, that response is discarded and ErrStaleRegeneration is
// returned, so the most recently started invocation always wins.
func (w *Workspace) Regenerate(ctx context.Context) error {
	w.mu.Lock()
	w.generation++
	generation := w.generation
	id := w.result.ID
	payload := BuildPayload(w.result)
	style := w.result.Style
	w.status = Status{State: StateSubmitting}
	w.mu.Unlock()

	ctx, span := w.tracer.Start(ctx, "workspace.regenerate")
	span.SetAttributes(
		attribute.String("result.id", id),
		attribute.Int64("regeneration.generation", int64(generation)),
	)
	defer span.End()

	start := time.Now()
	next, err := w.fetchRegenerated(ctx, id, payload, style)

	w.mu.Lock()
	if generation != w.generation {
		w.mu.Unlock()
		w.logger.Info("Discarding stale regeneration", "id", id, "generation", generation)
		w.record(ctx, "stale", start)
		span.SetStatus(codes.Error, "stale")
		return ErrStaleRegeneration
	}
	if err != nil {
		w.status = Status{State: StateFailed, Message: UserErrorMessage}
		w.mu.Unlock()
		w.logger.LogError(err, "Regeneration failed", "id", id)
		w.record(ctx, "failure", start)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	w.result = next
	w.status = Status{State: StateReady}
	w.drafts.SaveExperience(ctx, next.ID, next.Experience)
	w.drafts.SaveEducation(ctx, next.ID, next.Education)
	w.mu.Unlock()

	w.record(ctx, "success", start)
	span.SetAttributes(attribute.String("result.new_id", next.ID))
	w.logger.Info("Regenerated resume", "previous_id", id, "id", next.ID, "outputs", len(next.Outputs))

	target := AnalysisPath(next.ID)
	if !w.nav.ReplaceState(target) {
		w.nav.Navigate(target)
	}
	return nil
}

// fetchRegenerated runs the submit-then-fetch pair without holding the lock
func (w *Workspace) fetchRegenerated(ctx context.Context, id string, payload types.RegenerateRequest, style types.Style) (types.TailoringResult, error) {
	if w.backend == nil {
		return types.TailoringResult{}, errors.NewInternalError(errors.ErrCodeRegenerateFailed, "workspace has no backend", nil)
	}
	resp, err := w.backend.Regenerate(ctx, id, payload)
	if err != nil {
		return types.TailoringResult{}, err
	}
	newID := strings.TrimSpace(resp.ID)
	if newID == "" {
		return types.TailoringResult{}, errors.NewNetworkError(errors.ErrCodeRegenerateFailed,
			"Failed to regenerate resume", fmt.Errorf("response carried no id"))
	}

	fetched, err := w.backend.GetResult(ctx, newID)
	if err != nil {
		return types.TailoringResult{}, err
	}
	canonical := *fetched
	if canonical.ID == "" {
		canonical.ID = newID
	}
	return FromResponse(canonical, w.backend.OutputFiles(canonical.Outputs, canonical.ID), style), nil
}

func (w *Workspace) record(ctx context.Context, outcome string, start time.Time) {
	if w.recorder != nil {
		w.recorder.RecordRegeneration(ctx, outcome, time.Since(start))
	}
}
