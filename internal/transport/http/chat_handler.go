package http

import (
	"errors"
	"net/http"

	"bloodlink-service/internal/domain"
)

type chatResponse struct {
	Success  bool   `json:"success"`
	Response string `json:"response"`
}

// handleChat answers one chatbot turn. Errors are signaled in-body with
// success=false; the HTTP status stays 200 so the widget can always render
// the response field.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusOK, chatResponse{Success: false, Response: "Invalid request method or missing message."})
		return
	}
	message := r.PostFormValue("message")
	sessionID := h.chatSessionID(w, r)

	reply, err := h.chat.HandleTurn(r.Context(), sessionID, message)
	if errors.Is(err, domain.ErrEmptyMessage) {
		writeJSON(w, http.StatusOK, chatResponse{Success: false, Response: "Please enter a message."})
		return
	}
	if err != nil {
		h.log.Error("chat turn failed", "err", err)
		writeJSON(w, http.StatusOK, chatResponse{Success: false, Response: "Something went wrong. Please try again."})
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Success: true, Response: reply})
}

func (h *Handler) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := h.chatSessionID(w, r)
	history, err := h.chat.History(r.Context(), sessionID)
	if err != nil {
		h.log.Error("chat history failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}
	if history == nil {
		history = []domain.ChatTurn{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "history": history})
}

func (h *Handler) handleChatClear(w http.ResponseWriter, r *http.Request) {
	sessionID := h.chatSessionID(w, r)
	if err := h.chat.Clear(r.Context(), sessionID); err != nil {
		h.log.Error("chat clear failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
