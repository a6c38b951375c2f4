package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in process memory. Losing them on restart is
// acceptable: registration completes within one exchange.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (s *MemoryStore) Get(_ context.Context, senderID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[senderID]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

func (s *MemoryStore) Set(_ context.Context, senderID string, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *sess
	stored.SenderID = senderID
	stored.UpdatedAt = time.Now().UTC()
	s.sessions[senderID] = &stored

	return nil
}

func (s *MemoryStore) Clear(_ context.Context, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, senderID)
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		copied := *sess
		all = append(all, &copied)
	}

	return all, nil
}
