package coach

import "context"

// Service is the single entry point the transport layer talks to. It folds
// session lifecycle and run driving into two operations, one per endpoint.
type Service struct {
	sessions *SessionManager
	driver   *Driver
}

func NewService(sessions *SessionManager, driver *Driver) *Service {
	return &Service{sessions: sessions, driver: driver}
}

// NewSession creates a fresh conversation and returns its identifier. The
// caller stores the id client-side and presents it on every later turn.
func (svc *Service) NewSession(ctx context.Context) (string, error) {
	s, err := svc.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

// Send runs one full turn for the session and returns the final assistant
// reply.
func (svc *Service) Send(ctx context.Context, sessionID, userText string) (string, error) {
	s, err := svc.sessions.Ensure(sessionID)
	if err != nil {
		return "", err
	}
	return svc.driver.RunTurn(ctx, s, userText)
}
