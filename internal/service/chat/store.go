package chat

import (
	"context"
	"sync"

	"github.com/sleighworks/santaline/internal/model/chat"
)

// Store is the pluggable persistence backend for sessions and
// transcripts. The memory implementation is the default; Redis is used
// when SANTA_REDIS_ADDR is set.
type Store interface {
	PutSession(ctx context.Context, session chat.Session) error
	GetSession(ctx context.Context, sessionID string) (chat.Session, bool, error)
	AppendMessage(ctx context.Context, sessionID string, message chat.Message) error
	ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// MemoryStore keeps everything process-local. Data is lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
}

func (s *MemoryStore) PutSession(_ context.Context, session chat.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	if _, ok := s.messages[session.ID]; !ok {
		s.messages[session.ID] = make([]chat.Message, 0, 16)
	}
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, sessionID string) (chat.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok, nil
}

func (s *MemoryStore) AppendMessage(_ context.Context, sessionID string, message chat.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[sessionID] = append(s.messages[sessionID], message)
	return nil
}

func (s *MemoryStore) ListMessages(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	messages := s.messages[sessionID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
