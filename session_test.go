package coach

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type failingThreadAPI struct {
	stubAPI
}

func (f *failingThreadAPI) CreateThread(_ context.Context, _ openai.ThreadRequest) (openai.Thread, error) {
	return openai.Thread{}, fmt.Errorf("service unavailable")
}

func TestSessionManagerCreate(t *testing.T) {
	m := NewSessionManager(&stubAPI{})

	s, err := m.Create(context.Background())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID != "thread_stub" {
		t.Fatalf("session id should be the thread id, got %q", s.ID)
	}
	if m.Len() != 1 {
		t.Fatalf("session not tracked, len=%d", m.Len())
	}
}

func TestSessionManagerCreateFailure(t *testing.T) {
	m := NewSessionManager(&failingThreadAPI{})

	_, err := m.Create(context.Background())
	if !errors.Is(err, ErrSessionCreationFailed) {
		t.Fatalf("want ErrSessionCreationFailed, got %v", err)
	}
	if m.Len() != 0 {
		t.Fatalf("failed create must not track a session, len=%d", m.Len())
	}
}

func TestSessionManagerEnsure(t *testing.T) {
	m := NewSessionManager(&stubAPI{})

	first, err := m.Ensure("thread_42")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	second, err := m.Ensure(" thread_42 ")
	if err != nil {
		t.Fatalf("Ensure again: %v", err)
	}
	if first != second {
		t.Fatal("same id must map to the same session value")
	}
	if m.Len() != 1 {
		t.Fatalf("want one tracked session, got %d", m.Len())
	}
}

func TestSessionManagerEnsureEmptyID(t *testing.T) {
	m := NewSessionManager(&stubAPI{})
	if _, err := m.Ensure("   "); err == nil {
		t.Fatal("empty session id should be rejected")
	}
}

func TestSessionGuard(t *testing.T) {
	s := &Session{ID: "thread_1"}

	if err := s.acquire(); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := s.acquire(); !errors.Is(err, ErrRunAlreadyActive) {
		t.Fatalf("want ErrRunAlreadyActive, got %v", err)
	}
	s.release()
	if err := s.acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}
