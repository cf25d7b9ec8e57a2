package server

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"resumetailor/internal/common"
	"resumetailor/internal/errors"
	"resumetailor/internal/types"
	"resumetailor/internal/utils"
	"resumetailor/internal/workflow"
	"resumetailor/internal/workspace"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ExperienceResponse carries the experience section after an edit
type ExperienceResponse struct {
	Experience []types.ExperienceEntry `json:"experience"`
}

// EducationResponse carries the education section after an edit
type EducationResponse struct {
	Education []types.EducationEntry `json:"education"`
}

func (s *Server) startSpan(r *http.Request, name string) (*http.Request, trace.Span) {
	ctx, span := s.Observability.Tracer("resumetailor.api").Start(r.Context(), name)
	if id := r.PathValue("id"); id != "" {
		span.SetAttributes(attribute.String("result.id", id))
	}
	return r.WithContext(ctx), span
}

// openWorkspace fetches the canonical result for id and registers a session for it
func (s *Server) openWorkspace(r *http.Request, id string) (*workspace.Workspace, error) {
	resp, err := s.Backend.GetResult(r.Context(), id)
	if err != nil {
		return nil, err
	}
	canonical := *resp
	if canonical.ID == "" {
		canonical.ID = id
	}
	result := workspace.FromResponse(canonical, s.Backend.OutputFiles(canonical.Outputs, canonical.ID), types.DefaultStyle)
	return s.register(r, result), nil
}

func (s *Server) register(r *http.Request, result types.TailoringResult) *workspace.Workspace {
	ws := workspace.Open(r.Context(), result, s.Backend,
		workspace.WithDrafts(s.Drafts),
		workspace.WithNavigator(s.Sessions.Navigator(result.ID)),
		workspace.WithRecorder(s.Observability.GetMetrics()),
		workspace.WithLogger(s.Logger),
	)
	s.Sessions.Put(result.ID, ws)
	return ws
}

// session resolves the open workspace named by the {id} path value
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, bool) {
	id := r.PathValue("id")
	ws, ok := s.Sessions.Get(id)
	if !ok {
		writeErrorResponse(w, "Workspace not open", fmt.Sprintf("POST %s/open first", workspace.AnalysisPath(id)), http.StatusNotFound)
		return nil, false
	}
	return ws, true
}

func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	r, span := s.startSpan(r, "api.open")
	defer span.End()

	id := r.PathValue("id")
	if err := common.ValidateResultID(id); err != nil {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid result id", err.Error(), http.StatusBadRequest)
		return
	}

	if ws, ok := s.Sessions.Get(id); ok {
		writeJSON(w, http.StatusOK, ws.Document())
		return
	}

	ws, err := s.openWorkspace(r, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.Logger.LogError(err, "Failed to open result", "id", id)
		writeErrorResponse(w, "Failed to load result", "The result could not be fetched from the backend", http.StatusBadGateway)
		return
	}

	w.Header().Set("Location", workspace.AnalysisPath(ws.ID()))
	writeJSON(w, http.StatusCreated, ws.Document())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	if ws, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusOK, ws.Document())
	}
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ws.SetStatement(req.Value)
	writeJSON(w, http.StatusOK, ws.Document())
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	ws.SetSkills(req.Value)
	writeJSON(w, http.StatusOK, ws.Document())
}

func (s *Server) handleStyle(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.session(w, r)
	if !ok {
		return
	}
	var req StyleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	style, err := types.ParseStyle(req.Style)
	if err == nil {
		err = ws.SetStyle(style)
	}
	if err != nil {
		writeErrorResponse(w, "Invalid style", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ws.Document())
}

func (s *Server) handleTab(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.session(w, r)
	if !ok {
		return
	}
	var req TabRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := ws.SelectTab(workspace.Tab(req.Tab)); err != nil {
		writeErrorResponse(w, "Invalid tab", err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ws.View())
}

func (s *Server) handleAddExperience(w http.ResponseWriter, r *http.Request) {
	if ws, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusCreated, ExperienceResponse{ws.AddExperience(r.Context())})
	}
}

func (s *Server) handleUpdateExperience(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	var patch types.ExperiencePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	writeJSON(w, http.StatusOK, ExperienceResponse{ws.UpdateExperience(r.Context(), index, patch)})
}

func (s *Server) handleRemoveExperience(w http.ResponseWriter, r *http.Request) {
	if ws, index, ok := s.sessionAt(w, r); ok {
		writeJSON(w, http.StatusOK, ExperienceResponse{ws.RemoveExperience(r.Context(), index)})
	}
}

func (s *Server) handleAddExperienceBullet(w http.ResponseWriter, r *http.Request) {
	if ws, index, ok := s.sessionAt(w, r); ok {
		writeJSON(w, http.StatusCreated, ExperienceResponse{ws.AddExperienceBullet(r.Context(), index)})
	}
}

func (s *Server) handleUpdateExperienceBullet(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	bullet, ok := pathIndex(w, r, "bullet")
	if !ok {
		return
	}
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, ExperienceResponse{ws.UpdateExperienceBullet(r.Context(), index, bullet, req.Value)})
}

func (s *Server) handleRemoveExperienceBullet(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	if bullet, ok := pathIndex(w, r, "bullet"); ok {
		writeJSON(w, http.StatusOK, ExperienceResponse{ws.RemoveExperienceBullet(r.Context(), index, bullet)})
	}
}

func (s *Server) handleAddEducation(w http.ResponseWriter, r *http.Request) {
	if ws, ok := s.session(w, r); ok {
		writeJSON(w, http.StatusCreated, EducationResponse{ws.AddEducation(r.Context())})
	}
}

func (s *Server) handleUpdateEducation(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	var patch types.EducationPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	writeJSON(w, http.StatusOK, EducationResponse{ws.UpdateEducation(r.Context(), index, patch)})
}

func (s *Server) handleRemoveEducation(w http.ResponseWriter, r *http.Request) {
	if ws, index, ok := s.sessionAt(w, r); ok {
		writeJSON(w, http.StatusOK, EducationResponse{ws.RemoveEducation(r.Context(), index)})
	}
}

func (s *Server) handleAddEducationBullet(w http.ResponseWriter, r *http.Request) {
	if ws, index, ok := s.sessionAt(w, r); ok {
		writeJSON(w, http.StatusCreated, EducationResponse{ws.AddEducationBullet(r.Context(), index)})
	}
}

func (s *Server) handleUpdateEducationBullet(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	bullet, ok := pathIndex(w, r, "bullet")
	if !ok {
		return
	}
	var req TextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, EducationResponse{ws.UpdateEducationBullet(r.Context(), index, bullet, req.Value)})
}

func (s *Server) handleRemoveEducationBullet(w http.ResponseWriter, r *http.Request) {
	ws, index, ok := s.sessionAt(w, r)
	if !ok {
		return
	}
	if bullet, ok := pathIndex(w, r, "bullet"); ok {
		writeJSON(w, http.StatusOK, EducationResponse{ws.RemoveEducationBullet(r.Context(), index, bullet)})
	}
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	r, span := s.startSpan(r, "api.regenerate")
	defer span.End()

	ws, ok := s.session(w, r)
	if !ok {
		return
	}

	err := ws.Regenerate(r.Context())
	switch {
	case err == nil:
		id := ws.ID()
		span.SetAttributes(attribute.String("result.new_id", id))
		w.Header().Set("Location", workspace.AnalysisPath(id))
		writeJSON(w, http.StatusOK, RegenerateResponse{
			ID:       id,
			Path:     workspace.AnalysisPath(id),
			Document: ws.Document(),
		})
	case stderrors.Is(err, workspace.ErrStaleRegeneration):
		writeErrorResponse(w, "Regeneration superseded", "A newer regeneration replaced this one", http.StatusConflict)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		writeErrorResponse(w, workspace.UserErrorMessage, "", http.StatusBadGateway)
	}
}

// handleTailor runs the upload, analyze and generate pipeline for a
// multipart upload and opens a session for the generated result.
func (s *Server) handleTailor(w http.ResponseWriter, r *http.Request) {
	r, span := s.startSpan(r, "api.tailor")
	defer span.End()
	ctx := r.Context()

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("resume")
	if err != nil {
		writeErrorResponse(w, workflow.ValidationMessage, "resume file field is required", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Debug("Failed to close uploaded file", "error", err)
		}
	}()
	if !utils.IsResumeFile(header.Filename) {
		writeErrorResponse(w, "Unsupported file type", fmt.Sprintf("expected one of %v", utils.ResumeExtensions), http.StatusBadRequest)
		return
	}

	var style types.Style
	if raw := strings.TrimSpace(r.FormValue("style")); raw != "" {
		parsed, err := types.ParseStyle(raw)
		if err != nil {
			writeErrorResponse(w, "Invalid style", err.Error(), http.StatusBadRequest)
			return
		}
		style = parsed
	}

	runner := workflow.NewRunner(s.Backend, workflow.WithLogger(s.Logger))
	outcome, err := runner.Run(ctx, workflow.Input{
		ResumeName:      header.Filename,
		Resume:          file,
		JobText:         r.FormValue("job_text"),
		TargetRole:      r.FormValue("target_role"),
		ExperienceLevel: r.FormValue("experience_level"),
		Style:           style,
	})
	s.Observability.GetMetrics().RecordTailoringRun(ctx, err == nil)
	if err != nil {
		span.RecordError(err)
		if errors.IsType(err, errors.ErrorTypeValidation) {
			writeErrorResponse(w, workflow.ValidationMessage, err.Error(), http.StatusBadRequest)
			return
		}
		span.SetStatus(codes.Error, err.Error())
		writeErrorResponse(w, workflow.FailureMessage, "", http.StatusBadGateway)
		return
	}

	s.register(r, outcome.Result)
	w.Header().Set("Location", outcome.Path())
	writeJSON(w, http.StatusCreated, outcome)
}

// sessionAt resolves the session and the {index} path value
func (s *Server) sessionAt(w http.ResponseWriter, r *http.Request) (*workspace.Workspace, int, bool) {
	ws, ok := s.session(w, r)
	if !ok {
		return nil, 0, false
	}
	index, ok := pathIndex(w, r, "index")
	return ws, index, ok
}

// pathIndex parses an integer path value. Out-of-range indices are left
// to the editors, which treat them as no-ops.
func pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	index, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		writeErrorResponse(w, "Invalid index", fmt.Sprintf("%s must be an integer", name), http.StatusBadRequest)
		return 0, false
	}
	return index, true
}
