package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"bloodlink-service/internal/domain"
	"github.com/gorilla/websocket"
)

var chatUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type wsInbound struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wsMessagePayload struct {
	Text string `json:"text"`
}

type wsOutbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type wsReplyPayload struct {
	User string `json:"user"`
	Bot  string `json:"bot"`
}

type wsErrorPayload struct {
	Message string `json:"message"`
}

// handleChatWS upgrades to a websocket and answers chat turns over it. The
// connection shares the transcript with the plain POST endpoint, so a widget
// can mix both.
func (h *Handler) handleChatWS(w http.ResponseWriter, r *http.Request) {
	sessionID := h.chatSessionID(w, r)

	conn, err := chatUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "message":
			var payload wsMessagePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				_ = conn.WriteJSON(wsOutbound{Type: "error", Payload: wsErrorPayload{Message: "invalid message payload"}})
				continue
			}
			reply, err := h.chat.HandleTurn(r.Context(), sessionID, payload.Text)
			if errors.Is(err, domain.ErrEmptyMessage) {
				_ = conn.WriteJSON(wsOutbound{Type: "error", Payload: wsErrorPayload{Message: "Please enter a message."}})
				continue
			}
			if err != nil {
				h.log.Error("ws chat turn failed", "err", err)
				_ = conn.WriteJSON(wsOutbound{Type: "error", Payload: wsErrorPayload{Message: "Something went wrong. Please try again."}})
				continue
			}
			_ = conn.WriteJSON(wsOutbound{Type: "reply", Payload: wsReplyPayload{User: payload.Text, Bot: reply}})
		default:
			_ = conn.WriteJSON(wsOutbound{Type: "error", Payload: wsErrorPayload{Message: "unsupported message type"}})
		}
	}
}
