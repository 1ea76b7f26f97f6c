package memory

import (
	"context"
	"sync"

	"research-assistant/internal/domain"
)

// InMemoryStore is the process-local conversation store used when Redis
// is not configured or unreachable. Safe for concurrent use; concurrent
// appends to one session serialize on the mutex.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]domain.ConversationTurn
}

// NewInMemoryStore creates an empty in-process conversation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string][]domain.ConversationTurn),
	}
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, turn domain.ConversationTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns := append([]domain.ConversationTurn{turn}, s.sessions[sessionID]...)
	if len(turns) > domain.MaxTurnsPerSession {
		turns = turns[:domain.MaxTurnsPerSession]
	}
	s.sessions[sessionID] = turns
	return nil
}

func (s *InMemoryStore) Read(_ context.Context, sessionID string, limit int) ([]domain.ConversationTurn, error) {
	if limit <= 0 {
		return []domain.ConversationTurn{}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	turns := s.sessions[sessionID]
	if limit < len(turns) {
		turns = turns[:limit]
	}
	out := make([]domain.ConversationTurn, len(turns))
	copy(out, turns)
	return out, nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

var _ domain.ConversationStore = (*InMemoryStore)(nil)
