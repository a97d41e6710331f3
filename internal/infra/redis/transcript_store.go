package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bloodlink-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TranscriptStore keeps each session transcript in a Redis list
// (RPUSH chat:{sessionID}) with a TTL so abandoned sessions expire on their
// own. The list is trimmed to maxTurns, dropping the oldest entries.
type TranscriptStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxTurns int
}

func NewTranscriptStore(client *redis.Client, ttl time.Duration, maxTurns int) *TranscriptStore {
	return &TranscriptStore{client: client, ttl: ttl, maxTurns: maxTurns}
}

func (s *TranscriptStore) Append(ctx context.Context, sessionID string, turn domain.ChatTurn) error {
	raw, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	key := s.key(sessionID)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, raw)
	if s.maxTurns > 0 {
		pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	}
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append transcript: %w", err)
	}
	return nil
}

func (s *TranscriptStore) History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	raws, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	turns := make([]domain.ChatTurn, 0, len(raws))
	for _, raw := range raws {
		var turn domain.ChatTurn
		if err := json.Unmarshal([]byte(raw), &turn); err != nil {
			// A corrupt entry should not take the whole history down.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *TranscriptStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func (s *TranscriptStore) key(sessionID string) string {
	return "chat:transcript:" + sessionID
}
