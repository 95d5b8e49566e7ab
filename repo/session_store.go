package repo

import (
	"context"
	"sync"

	"CVForgeBot/model"
)

// SessionStore holds each user's wizard cursor.
type SessionStore interface {
	// Get returns the user's session; users without one are idle.
	Get(ctx context.Context, userID int64) (model.UserSession, error)
	Save(ctx context.Context, session model.UserSession) error
	Delete(ctx context.Context, userID int64) error
	Close() error
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]model.UserSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]model.UserSession)}
}

func (s *MemorySessionStore) Get(_ context.Context, userID int64) (model.UserSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userID]
	if !ok {
		return model.IdleSession(userID), nil
	}
	return session, nil
}

func (s *MemorySessionStore) Save(_ context.Context, session model.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.Phase == model.PhaseIdle {
		delete(s.sessions, session.UserID)
		return nil
	}
	s.sessions[session.UserID] = session
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}

func (s *MemorySessionStore) Close() error { return nil }
