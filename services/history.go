package services

import (
	"context"
	"encoding/json"
	"fmt"

	"agriqa/models"

	"github.com/redis/go-redis/v9"
)

const historyKeyPrefix = "chat:history:"

// HistoryStore persists chat turns keyed by session. Append order is the
// read-back order.
type HistoryStore interface {
	Append(ctx context.Context, msg models.ChatMessage) error
	History(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error)
	Ping(ctx context.Context) error
}

type redisHistoryStore struct {
	client *redis.Client
}

// NewRedisHistoryStore stores each session's turns as a redis list.
func NewRedisHistoryStore(client *redis.Client) HistoryStore {
	return &redisHistoryStore{client: client}
}

func (s *redisHistoryStore) Append(ctx context.Context, msg models.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	if err := s.client.RPush(ctx, historyKeyPrefix+msg.SessionID, payload).Err(); err != nil {
		return fmt.Errorf("append chat message: %w", err)
	}
	return nil
}

func (s *redisHistoryStore) History(ctx context.Context, sessionID string, limit int64) ([]models.ChatMessage, error) {
	entries, err := s.client.LRange(ctx, historyKeyPrefix+sessionID, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg models.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("decode chat message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

func (s *redisHistoryStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
