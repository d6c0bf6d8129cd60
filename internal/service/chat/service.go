package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sleighworks/santaline/internal/model/chat"
)

var (
	ErrKidNameRequired = errors.New("kid name must be 1 to 20 characters")
	ErrSessionNotFound = errors.New("session not found")
)

// Service encapsulates conversation state management on top of a Store.
type Service struct {
	store Store
}

// NewService wraps the given store; nil falls back to the in-memory one.
func NewService(store Store) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{store: store}
}

// CreateSession provisions a session for a child once consent is in hand.
func (s *Service) CreateSession(ctx context.Context, kidName, age, parentEmail string, consent bool) (chat.Session, error) {
	kidName = strings.TrimSpace(kidName)
	if kidName == "" || len([]rune(kidName)) > 20 {
		return chat.Session{}, ErrKidNameRequired
	}

	session := chat.Session{
		ID:             uuid.NewString(),
		ParentEmail:    strings.TrimSpace(parentEmail),
		KidName:        kidName,
		Age:            strings.TrimSpace(age),
		ConsentGranted: consent,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.store.PutSession(ctx, session); err != nil {
		return chat.Session{}, err
	}
	return session, nil
}

// SaveMessage appends a message to the session transcript.
func (s *Service) SaveMessage(ctx context.Context, message chat.Message) error {
	if message.SessionID == "" {
		return ErrSessionNotFound
	}

	if _, ok, err := s.store.GetSession(ctx, message.SessionID); err != nil {
		return err
	} else if !ok {
		return ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	return s.store.AppendMessage(ctx, message.SessionID, message)
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	session, ok, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	if _, ok, err := s.store.GetSession(ctx, sessionID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrSessionNotFound
	}
	return s.store.ListMessages(ctx, sessionID)
}
