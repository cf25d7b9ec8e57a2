package server

import (
	"net/url"
	"strings"
	"sync"

	"resumetailor/internal/workspace"
)

// Sessions keeps the open workspaces keyed by their current result id
type Sessions struct {
	mu   sync.RWMutex
	byID map[string]*workspace.Workspace
}

// NewSessions creates an empty registry
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*workspace.Workspace)}
}

// Get returns the workspace open under id
func (s *Sessions) Get(id string) (*workspace.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ws, ok := s.byID[id]
	return ws, ok
}

// Put registers ws under id, replacing any previous session
func (s *Sessions) Put(id string, ws *workspace.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[id] = ws
}

// Len is the number of open sessions
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// rekey moves the session at from to to. The old id stops resolving.
func (s *Sessions) rekey(from, to string) {
	if from == to {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.byID[from]; ok {
		delete(s.byID, from)
		s.byID[to] = ws
	}
}

// Navigator returns the address updater for the session opened under id.
// A regeneration that changes the result id re-keys the session.
func (s *Sessions) Navigator(id string) workspace.Navigator {
	return &sessionNavigator{sessions: s, id: id}
}

type sessionNavigator struct {
	mu       sync.Mutex
	sessions *Sessions
	id       string
}

func (n *sessionNavigator) ReplaceState(path string) bool {
	id, ok := idFromPath(path)
	if !ok {
		return false
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sessions.rekey(n.id, id)
	n.id = id
	return true
}

// Navigate has no separate history on the server; it re-keys like ReplaceState.
func (n *sessionNavigator) Navigate(path string) {
	n.ReplaceState(path)
}

func idFromPath(path string) (string, bool) {
	escaped, ok := strings.CutPrefix(path, "/analysis/")
	if !ok || escaped == "" {
		return "", false
	}
	id, err := url.PathUnescape(escaped)
	if err != nil {
		return "", false
	}
	return id, true
}
