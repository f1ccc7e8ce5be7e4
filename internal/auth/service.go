package auth

import (
	"context"
	"sync"
)

// Session is the current authentication state observed from the identity
// provider: who is signed in (empty UserID means nobody) and whether the
// provider is still resolving. It is derived, never stored.
type Session struct {
	UserID  string `json:"user_id"`
	Loading bool   `json:"loading"`
}

// Service is the remote auth boundary. Sessions emits the current Session
// and every subsequent change; SignOut asks the provider to end the
// identity. Sign-in flows belong to the provider, not to this service.
type Service interface {
	Sessions(ctx context.Context) <-chan Session
	SignOut(ctx context.Context) error
}

// StaticService serves a fixed identity. It backs single-user local runs
// (no external identity provider configured) and doubles as the test
// double: Set pushes a new session to every listener.
type StaticService struct {
	mu      sync.Mutex
	current Session
	subs    []chan Session
}

func NewStaticService(userID string) *StaticService {
	return &StaticService{current: Session{UserID: userID}}
}

func (s *StaticService) Sessions(ctx context.Context) <-chan Session {
	ch := make(chan Session, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	current := s.current
	s.mu.Unlock()

	ch <- current
	go func() {
		<-ctx.Done()
	}()
	return ch
}

// Set replaces the current session and notifies all listeners.
func (s *StaticService) Set(session Session) {
	s.mu.Lock()
	s.current = session
	subs := make([]chan Session, len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- session:
		default:
		}
	}
}

// SignOut drops the identity, which listeners observe as a denied session.
func (s *StaticService) SignOut(_ context.Context) error {
	s.Set(Session{})
	return nil
}
