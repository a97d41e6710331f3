package memory

import (
	"context"
	"sync"

	"bloodlink-service/internal/domain"
)

// TranscriptStore is an in-memory implementation of app.TranscriptStore.
// Transcripts are capped per session; the oldest turn is dropped first.
type TranscriptStore struct {
	maxTurns int
	mu       sync.RWMutex
	turns    map[string][]domain.ChatTurn
}

func NewTranscriptStore(maxTurns int) *TranscriptStore {
	return &TranscriptStore{
		maxTurns: maxTurns,
		turns:    make(map[string][]domain.ChatTurn),
	}
}

func (s *TranscriptStore) Append(_ context.Context, sessionID string, turn domain.ChatTurn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.turns[sessionID], turn)
	if s.maxTurns > 0 && len(history) > s.maxTurns {
		history = history[len(history)-s.maxTurns:]
	}
	s.turns[sessionID] = history
	return nil
}

func (s *TranscriptStore) History(_ context.Context, sessionID string) ([]domain.ChatTurn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.turns[sessionID]
	out := make([]domain.ChatTurn, len(history))
	copy(out, history)
	return out, nil
}

func (s *TranscriptStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	return nil
}
