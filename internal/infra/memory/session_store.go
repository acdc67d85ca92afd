package memory

import (
	"context"
	"sync"

	"prepquiz-service/internal/domain"
)

// SessionStore is the in-memory implementation of app.SessionStore.
// Sessions are copied on the way in and out so callers never share the
// stored slice headers.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.QuizSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.QuizSession)}
}

func (s *SessionStore) Save(_ context.Context, session *domain.QuizSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = copySession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.QuizSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := copySession(&session)
	return &out, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func copySession(session *domain.QuizSession) domain.QuizSession {
	out := *session
	out.Questions = append([]domain.Question(nil), session.Questions...)
	out.Answers = append([]string(nil), session.Answers...)
	return out
}
