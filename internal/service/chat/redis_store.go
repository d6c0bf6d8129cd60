package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/sleighworks/santaline/internal/model/chat"
)

// RedisStore persists sessions as JSON values and transcripts as Redis
// lists, namespaced under "santa:".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to the given address and verifies the
// connection before returning.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client, prefix: "santa"}, nil
}

func (s *RedisStore) sessionKey(id string) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id)
}

func (s *RedisStore) messagesKey(id string) string {
	return fmt.Sprintf("%s:messages:%s", s.prefix, id)
}

func (s *RedisStore) PutSession(ctx context.Context, session chat.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, s.sessionKey(session.ID), data, 0).Err()
}

func (s *RedisStore) GetSession(ctx context.Context, sessionID string) (chat.Session, bool, error) {
	data, err := s.client.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return chat.Session{}, false, nil
	}
	if err != nil {
		return chat.Session{}, false, err
	}

	var session chat.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return chat.Session{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return session, true, nil
}

func (s *RedisStore) AppendMessage(ctx context.Context, sessionID string, message chat.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return s.client.RPush(ctx, s.messagesKey(sessionID), data).Err()
}

func (s *RedisStore) ListMessages(ctx context.Context, sessionID string) ([]chat.Message, error) {
	raw, err := s.client.LRange(ctx, s.messagesKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]chat.Message, 0, len(raw))
	for _, item := range raw {
		var message chat.Message
		if err := json.Unmarshal([]byte(item), &message); err != nil {
			return nil, fmt.Errorf("unmarshal message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Close releases the underlying Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
