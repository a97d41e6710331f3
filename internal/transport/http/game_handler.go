package http

import (
	"errors"
	"net/http"
	"strconv"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/catalog"
	"bloodlink-service/internal/domain"
)

type saveScoreResponse struct {
	Success   bool           `json:"success"`
	NewBadges []domain.Badge `json:"new_badges"`
	Error     string         `json:"error,omitempty"`
}

// handleSaveScore persists a finished round's score for the signed-in donor
// and reports any badges it unlocked. The round itself ran in the client;
// only range and authentication are validated here.
func (h *Handler) handleSaveScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.sessionUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, saveScoreResponse{Success: false, Error: "You must be logged in to save your score."})
		return
	}
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusOK, saveScoreResponse{Success: false, Error: "Invalid request."})
		return
	}
	score, err := strconv.Atoi(r.PostFormValue("score"))
	if err != nil {
		writeJSON(w, http.StatusOK, saveScoreResponse{Success: false, Error: "Invalid score."})
		return
	}
	game := r.PostFormValue("game")
	if game == "" {
		game = catalog.GameBloodFacts
	}

	badges, err := h.scores.SaveScore(r.Context(), userID, h.sessionUserName(r), game, score)
	switch {
	case errors.Is(err, domain.ErrScoreOutOfRange):
		writeJSON(w, http.StatusOK, saveScoreResponse{Success: false, Error: "Score must be between 0 and 10."})
		return
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, saveScoreResponse{Success: false, Error: "You must be logged in to save your score."})
		return
	case err != nil:
		h.log.Error("save score failed", "user", userID, "err", err)
		writeJSON(w, http.StatusOK, saveScoreResponse{Success: false, Error: "Could not save your score. Please try again."})
		return
	}
	if badges == nil {
		badges = []domain.Badge{}
	}
	writeJSON(w, http.StatusOK, saveScoreResponse{Success: true, NewBadges: badges})
}

// handleLeaderboard returns the ranked board for a game, best score per user.
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		game = catalog.GameBloodFacts
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.scores.Leaderboard(r.Context(), game, limit)
	if err != nil {
		h.log.Error("leaderboard failed", "game", game, "err", err)
		writeJSON(w, http.StatusInternalServerError, []domain.LeaderboardEntry{})
		return
	}
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGameQuestions deals a freshly shuffled round from the catalog. The
// client drives the round; explanations and correct indices ship with the
// questions, mirroring the trust the rest of the game places in the browser.
func (h *Handler) handleGameQuestions(w http.ResponseWriter, r *http.Request) {
	game := r.URL.Query().Get("game")
	if game == "" {
		game = catalog.GameBloodFacts
	}
	bank, err := h.catalogs.GetCatalog(r.Context(), game)
	if err != nil {
		h.log.Error("catalog load failed", "game", game, "err", err)
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Game not found."})
		return
	}
	questions, err := app.SampleQuestions(bank, catalog.RoundLength, nil)
	if err != nil {
		h.log.Error("round sampling failed", "game", game, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Game is unavailable."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "questions": questions})
}
