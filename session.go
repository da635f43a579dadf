package coach

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/edspark/coach/src/assistant"
)

// Session is one persistent conversation with the assistant service. The ID
// is the provider thread identifier; it is the only state a client must keep
// across page reloads. The guard enforces at most one outstanding run per
// session.
type Session struct {
	ID string

	mu     sync.Mutex
	active bool
}

// acquire marks the session as having an outstanding run. It fails when a
// prior run is still non-terminal.
func (s *Session) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return ErrRunAlreadyActive
	}
	s.active = true
	return nil
}

func (s *Session) release() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// SessionManager owns the session lifecycle: create a thread once, reuse it
// for every subsequent turn. Threads are never created implicitly while one
// is live for the same surface; destruction is client-side (the browser
// forgetting its session id).
type SessionManager struct {
	api assistant.API

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionManager(api assistant.API) *SessionManager {
	return &SessionManager{
		api:      api,
		sessions: make(map[string]*Session),
	}
}

// Create asks the assistant service for a new conversation thread.
func (m *SessionManager) Create(ctx context.Context) (*Session, error) {
	thread, err := m.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSessionCreationFailed, err)
	}

	s := &Session{ID: thread.ID}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

// Ensure returns the tracked session for id, registering it first when the
// id arrived from a client that outlived a server restart. The run guard
// lives server-side, so the same id always maps to the same Session value.
func (m *SessionManager) Ensure(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrSessionCreationFailed)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	s := &Session{ID: id}
	m.sessions[id] = s
	return s, nil
}

// Len reports the number of tracked sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
