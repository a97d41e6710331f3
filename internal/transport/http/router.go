// Package http wires the application services to their web endpoints:
// the chatbot (form POST and websocket), the trivia game JSON API and the
// donor account/dashboard API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"
)

const (
	sessionName    = "bloodlink_session"
	sessionUserID  = "user_id"
	sessionUserKey = "user_name"
	sessionChatKey = "chat_sid"
)

// CatalogRepository serves cached question banks.
type CatalogRepository interface {
	GetCatalog(ctx context.Context, game string) (domain.TriviaCatalog, error)
}

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	chat     *app.ChatService
	scores   *app.ScoreService
	donors   *app.DonorService
	catalogs CatalogRepository
	sessions *sessions.CookieStore
	log      *slog.Logger
}

func NewHandler(
	chat *app.ChatService,
	scores *app.ScoreService,
	donors *app.DonorService,
	catalogs CatalogRepository,
	store *sessions.CookieStore,
	log *slog.Logger,
) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		chat:     chat,
		scores:   scores,
		donors:   donors,
		catalogs: catalogs,
		sessions: store,
		log:      log,
	}
}

// Router assembles all routes with logging and CORS middleware.
func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(h.logRequests)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	// Chatbot widget.
	r.HandleFunc("/chat", h.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/chat/history", h.handleChatHistory).Methods(http.MethodGet)
	r.HandleFunc("/chat/clear", h.handleChatClear).Methods(http.MethodPost)
	r.HandleFunc("/ws/chat", h.handleChatWS)

	// Trivia game; round state stays in the client, only the score crosses back.
	r.HandleFunc("/save_score", h.handleSaveScore).Methods(http.MethodPost)
	r.HandleFunc("/get_leaderboard", h.handleLeaderboard).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/game/questions", h.handleGameQuestions).Methods(http.MethodGet)
	api.HandleFunc("/register", h.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	api.HandleFunc("/requests", h.handleCreateRequest).Methods(http.MethodPost)

	protected := api.PathPrefix("/").Subrouter()
	protected.Use(h.requireAuth)
	protected.HandleFunc("/dashboard", h.handleDashboard).Methods(http.MethodGet)
	protected.HandleFunc("/appointments", h.handleBookAppointment).Methods(http.MethodPost)
	protected.HandleFunc("/appointments", h.handleListAppointments).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{id:[0-9]+}/cancel", h.handleCancelAppointment).Methods(http.MethodPost)

	c := cors.New(cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}

type ctxKey int

const userIDKey ctxKey = iota

// requireAuth resolves the signed-in donor from the cookie session.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := h.sessionUserID(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "You must be logged in.",
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	})
}

func (h *Handler) sessionUserID(r *http.Request) (int64, bool) {
	session, _ := h.sessions.Get(r, sessionName)
	id, ok := session.Values[sessionUserID].(int64)
	return id, ok && id > 0
}

func (h *Handler) sessionUserName(r *http.Request) string {
	session, _ := h.sessions.Get(r, sessionName)
	name, _ := session.Values[sessionUserKey].(string)
	return name
}

// chatSessionID returns a stable per-browser-session id for the transcript,
// minting one on first contact.
func (h *Handler) chatSessionID(w http.ResponseWriter, r *http.Request) string {
	session, _ := h.sessions.Get(r, sessionName)
	if sid, ok := session.Values[sessionChatKey].(string); ok && sid != "" {
		return sid
	}
	sid := uuid.NewString()
	session.Values[sessionChatKey] = sid
	if err := session.Save(r, w); err != nil {
		h.log.Error("session save failed", "err", err)
	}
	return sid
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey).(int64)
	return id
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
