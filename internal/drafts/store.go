package drafts

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumetailor/internal/errors"
	"resumetailor/internal/types"

	"github.com/xeipuuv/gojsonschema"
)

// Section names one persisted slice of a result
type Section string

const (
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
)

// Sections lists every persisted section
var Sections = []Section{SectionExperience, SectionEducation}

// DefaultNamespace prefixes every key unless configured otherwise
const DefaultNamespace = "resumetailor"

//go:embed schema/entries.schema.json
var entriesSchemaJSON string

var entriesSchema = mustCompileSchema(entriesSchemaJSON)

func mustCompileSchema(source string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		panic(fmt.Sprintf("drafts: invalid embedded schema: %v", err))
	}
	return schema
}

// Observer is notified about degraded draft operations
type Observer interface {
	DraftFailure(ctx context.Context, op string, section Section)
}

// Store reads and writes section drafts keyed by result id.
// Load and Save never fail: problems are logged and reported to the
// observer, and callers carry on as if no draft existed.
type Store struct {
	backend   Backend
	namespace string
	logger    *errors.Logger
	observer  Observer
}

// Option configures a Store
type Option func(*Store)

// WithNamespace overrides DefaultNamespace
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		if namespace != "" {
			s.namespace = namespace
		}
	}
}

// WithObserver attaches a failure observer
func WithObserver(observer Observer) Option {
	return func(s *Store) { s.observer = observer }
}

// NewStore wraps backend
func NewStore(backend Backend, logger *errors.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = errors.Discard()
	}
	s := &Store{backend: backend, namespace: DefaultNamespace, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key builds "<namespace>:<id>:<section>"
func (s *Store) Key(id string, section Section) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, id, section)
}

func (s *Store) idPrefix(id string) string {
	return fmt.Sprintf("%s:%s:", s.namespace, id)
}

// LoadExperience returns the persisted experience draft for id, if any
func (s *Store) LoadExperience(ctx context.Context, id string) ([]types.ExperienceEntry, bool) {
	return load[types.ExperienceEntry](ctx, s, id, SectionExperience)
}

// LoadEducation returns the persisted education draft for id, if any
func (s *Store) LoadEducation(ctx context.Context, id string) ([]types.EducationEntry, bool) {
	return load[types.EducationEntry](ctx, s, id, SectionEducation)
}

// SaveExperience persists the experience draft for id
func (s *Store) SaveExperience(ctx context.Context, id string, entries []types.ExperienceEntry) {
	save(ctx, s, id, SectionExperience, entries)
}

// SaveEducation persists the education draft for id
func (s *Store) SaveEducation(ctx context.Context, id string, entries []types.EducationEntry) {
	save(ctx, s, id, SectionEducation, entries)
}

// Raw returns the stored JSON for one section without decoding it
func (s *Store) Raw(ctx context.Context, id string, section Section) ([]byte, bool, error) {
	return s.backend.Get(ctx, s.Key(id, section))
}

// Clear removes every section draft stored for id
func (s *Store) Clear(ctx context.Context, id string) error {
	for _, section := range Sections {
		if err := s.backend.Delete(ctx, s.Key(id, section)); err != nil {
			return errors.NewStorageError(errors.ErrCodeDraftWriteFailed, "failed to clear draft", err).
				WithContext("id", id).
				WithContext("section", string(section))
		}
	}
	s.logger.Info("Cleared drafts", "id", id)
	return nil
}

// List returns the ids that currently have at least one draft
func (s *Store) List(ctx context.Context) ([]string, error) {
	prefix := s.namespace + ":"
	keys, err := s.backend.Keys(ctx, prefix)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeDraftReadFailed, "failed to list drafts", err)
	}

	seen := make(map[string]struct{})
	for _, key := range keys {
		rest := strings.TrimPrefix(key, prefix)
		idx := strings.LastIndex(rest, ":")
		if idx <= 0 {
			continue
		}
		seen[rest[:idx]] = struct{}{}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch streams sections of id that change outside this process.
// Only backends implementing Watcher support it.
func (s *Store) Watch(ctx context.Context, id string) (<-chan Section, error) {
	watcher, ok := s.backend.(Watcher)
	if !ok {
		return nil, errors.NewStorageError(errors.ErrCodeDraftReadFailed, "drafts backend does not support watching", nil)
	}
	prefix := s.idPrefix(id)
	keys, err := watcher.Watch(ctx, prefix)
	if err != nil {
		return nil, errors.NewStorageError(errors.ErrCodeDraftReadFailed, "failed to watch drafts", err).WithContext("id", id)
	}

	sections := make(chan Section)
	go func() {
		defer close(sections)
		for key := range keys {
			section := Section(strings.TrimPrefix(key, prefix))
			select {
			case sections <- section:
			case <-ctx.Done():
				return
			}
		}
	}()
	return sections, nil
}

// Close releases the backend
func (s *Store) Close() error {
	return s.backend.Close()
}

func load[T any](ctx context.Context, s *Store, id string, section Section) ([]T, bool) {
	key := s.Key(id, section)
	data, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.warn(ctx, "load", section, "Failed to read draft", err, key)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	result, err := entriesSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		s.warn(ctx, "load", section, "Failed to parse draft", err, key)
		return nil, false
	}
	if !result.Valid() {
		s.warn(ctx, "load", section, "Draft does not match the entry schema", schemaError(result), key)
		return nil, false
	}

	var entries []T
	if err := json.Unmarshal(data, &entries); err != nil {
		s.warn(ctx, "load", section, "Failed to parse draft", err, key)
		return nil, false
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, true
}

func save[T any](ctx context.Context, s *Store, id string, section Section, entries []T) {
	key := s.Key(id, section)
	if entries == nil {
		entries = []T{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		s.warn(ctx, "save", section, "Failed to encode draft", err, key)
		return
	}
	if err := s.backend.Set(ctx, key, data); err != nil {
		s.warn(ctx, "save", section, "Failed to persist draft", err, key)
	}
}

func (s *Store) warn(ctx context.Context, op string, section Section, message string, err error, key string) {
	s.logger.Warn(message, "op", op, "key", key, "error", err.Error())
	if s.observer != nil {
		s.observer.DraftFailure(ctx, op, section)
	}
}

func schemaError(result *gojsonschema.Result) error {
	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		messages = append(messages, field+": "+desc.Description())
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
