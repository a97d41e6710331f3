package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"bloodlink-service/internal/domain"
)

// FallbackMessage is what the chatbot says when the external responder fails.
const FallbackMessage = "I'm sorry, I couldn't process that right now. Please try again in a moment."

// Responder generates a reply for messages no FAQ entry covers.
type Responder interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// TranscriptStore persists per-session chat transcripts (in-memory, Redis, etc).
type TranscriptStore interface {
	Append(ctx context.Context, sessionID string, turn domain.ChatTurn) error
	History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error)
	Clear(ctx context.Context, sessionID string) error
}

// ChatService orchestrates one chat turn: FAQ lookup first, external
// responder as fallback, transcript append last.
type ChatService struct {
	faqs        []domain.FaqEntry
	responder   Responder
	transcripts TranscriptStore
	log         *slog.Logger
	now         func() time.Time
}

func NewChatService(faqs []domain.FaqEntry, responder Responder, transcripts TranscriptStore, log *slog.Logger) *ChatService {
	if log == nil {
		log = slog.Default()
	}
	return &ChatService{
		faqs:        faqs,
		responder:   responder,
		transcripts: transcripts,
		log:         log,
		now:         time.Now,
	}
}

// HandleTurn resolves a reply for userText and appends the exchange to the
// session transcript. Blank input is rejected before any external call.
// A responder failure degrades to FallbackMessage; the turn still succeeds.
func (s *ChatService) HandleTurn(ctx context.Context, sessionID, userText string) (string, error) {
	trimmed := strings.TrimSpace(userText)
	if trimmed == "" {
		return "", domain.ErrEmptyMessage
	}

	botText, matched := MatchFAQ(trimmed, s.faqs)
	if !matched {
		reply, err := s.responder.Reply(ctx, trimmed)
		if err != nil {
			s.log.Error("fallback responder failed", "session", sessionID, "err", err)
			reply = FallbackMessage
		}
		botText = reply
	}

	turn := domain.ChatTurn{UserText: trimmed, BotText: botText, At: s.now()}
	if err := s.transcripts.Append(ctx, sessionID, turn); err != nil {
		// The reply is already computed; losing one history entry is
		// preferable to failing the turn.
		s.log.Error("transcript append failed", "session", sessionID, "err", err)
	}
	return botText, nil
}

// History returns the session transcript, oldest first.
func (s *ChatService) History(ctx context.Context, sessionID string) ([]domain.ChatTurn, error) {
	return s.transcripts.History(ctx, sessionID)
}

// Clear drops the session transcript, e.g. when the session ends.
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	return s.transcripts.Clear(ctx, sessionID)
}
