// Package workspace holds one open tailoring result while it is edited
// and regenerated.
//
// A Workspace owns its TailoringResult exclusively. Section edits replace
// collections rather than mutating them, every getter returns a copy, and
// a successful regeneration swaps the whole result (id included) under a
// single lock so no caller can observe a half-adopted response.
package workspace

import (
	"context"
	"sync"
	"time"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Backend is the part of the backend client a workspace needs
type Backend interface {
	Regenerate(ctx context.Context, id string, req types.RegenerateRequest) (*types.RegenerateResponse, error)
	GetResult(ctx context.Context, id string) (*types.ResultResponse, error)
	OutputFiles(paths []string, id string) []types.OutputFile
}

// DraftStore persists unsaved section edits keyed by result id
type DraftStore interface {
	LoadExperience(ctx context.Context, id string) ([]types.ExperienceEntry, bool)
	LoadEducation(ctx context.Context, id string) ([]types.EducationEntry, bool)
	SaveExperience(ctx context.Context, id string, entries []types.ExperienceEntry)
	SaveEducation(ctx context.Context, id string, entries []types.EducationEntry)
}

// Navigator updates the externally visible address of the workspace
type Navigator interface {
	// ReplaceState swaps the current address in place and reports whether it could.
	ReplaceState(path string) bool
	// Navigate performs a regular client-side navigation.
	Navigate(path string)
}

// Recorder receives regeneration outcomes
type Recorder interface {
	RecordRegeneration(ctx context.Context, outcome string, duration time.Duration)
}

// Workspace is the single source of truth for an open result
type Workspace struct {
	mu         sync.Mutex
	result     types.TailoringResult
	status     Status
	generation uint64
	tab        Tab

	backend  Backend
	drafts   DraftStore
	nav      Navigator
	recorder Recorder
	logger   *errors.Logger
	tracer   trace.Tracer
}

// Option configures a Workspace
type Option func(*Workspace)

// WithDrafts attaches a draft store
func WithDrafts(store DraftStore) Option {
	return func(w *Workspace) {
		if store != nil {
			w.drafts = store
		}
	}
}

// WithNavigator attaches an address updater
func WithNavigator(nav Navigator) Option {
	return func(w *Workspace) {
		if nav != nil {
			w.nav = nav
		}
	}
}

// WithRecorder attaches a metrics recorder
func WithRecorder(r Recorder) Option {
	return func(w *Workspace) { w.recorder = r }
}

// WithLogger sets the logger
func WithLogger(logger *errors.Logger) Option {
	return func(w *Workspace) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Open builds a workspace around an already fetched result. Drafts stored
// for initial.ID are read exactly once here and replace the server's
// experience and education when present.
func Open(ctx context.Context, initial types.TailoringResult, backend Backend, opts ...Option) *Workspace {
	w := &Workspace{
		result:  normalize(initial),
		status:  Status{State: StateIdle},
		tab:     DefaultTab,
		backend: backend,
		drafts:  nopDrafts{},
		nav:     nopNavigator{},
		logger:  errors.Discard(),
		tracer:  otel.Tracer("resumetailor.workspace"),
	}
	for _, opt := range opts {
		opt(w)
	}

	if experience, ok := w.drafts.LoadExperience(ctx, w.result.ID); ok {
		w.result.Experience = types.CloneExperience(experience)
		w.logger.Debug("Restored experience draft", "id", w.result.ID, "entries", len(experience))
	}
	if education, ok := w.drafts.LoadEducation(ctx, w.result.ID); ok {
		w.result.Education = types.CloneEducation(education)
		w.logger.Debug("Restored education draft", "id", w.result.ID, "entries", len(education))
	}
	return w
}

// ID returns the active result id
func (w *Workspace) ID() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result.ID
}

// Result returns a deep copy of the current result
func (w *Workspace) Result() types.TailoringResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result.Clone()
}

// Status returns the regeneration state
func (w *Workspace) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Snapshot returns result, status and view taken under one lock
func (w *Workspace) Snapshot() (types.TailoringResult, Status, View) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result.Clone(), w.status, Project(w.result, w.tab)
}

// Document is the serializable form of a snapshot
type Document struct {
	Result types.TailoringResult `json:"result"`
	Status Status                `json:"status"`
	View   View                  `json:"view"`
}

// Document returns the current snapshot as one value
func (w *Workspace) Document() Document {
	result, status, view := w.Snapshot()
	return Document{Result: result, Status: status, View: view}
}

// normalize applies the empty defaults a malformed payload degrades to.
func normalize(r types.TailoringResult) types.TailoringResult {
	out := r.Clone()
	if !out.Style.Valid() {
		out.Style = types.DefaultStyle
	}
	return out
}

type nopDrafts struct{}

func (nopDrafts) LoadExperience(context.Context, string) ([]types.ExperienceEntry, bool) {
	return nil, false
}
func (nopDrafts) LoadEducation(context.Context, string) ([]types.EducationEntry, bool) {
	return nil, false
}
func (nopDrafts) SaveExperience(context.Context, string, []types.ExperienceEntry) {}
func (nopDrafts) SaveEducation(context.Context, string, []types.EducationEntry)   {}

type nopNavigator struct{}

func (nopNavigator) ReplaceState(string) bool { return true }
func (nopNavigator) Navigate(string)          {}
