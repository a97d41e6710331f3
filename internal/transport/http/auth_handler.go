package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/domain"
)

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Phone           string `json:"phone"`
	Age             int    `json:"age"`
	BloodGroup      string `json:"blood_group"`
	City            string `json:"city"`
	State           string `json:"state"`
}

// decodeRegister accepts both the JSON API shape and the classic form post.
func decodeRegister(r *http.Request) (registerRequest, error) {
	var req registerRequest
	if r.Header.Get("Content-Type") == "application/json" {
		return req, json.NewDecoder(r.Body).Decode(&req)
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Name = r.PostFormValue("name")
	req.Email = r.PostFormValue("email")
	req.Password = r.PostFormValue("password")
	req.ConfirmPassword = r.PostFormValue("confirm_password")
	req.Phone = r.PostFormValue("phone")
	req.Age, _ = strconv.Atoi(r.PostFormValue("age"))
	req.BloodGroup = r.PostFormValue("blood_group")
	req.City = r.PostFormValue("city")
	req.State = r.PostFormValue("state")
	return req, nil
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRegister(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Invalid form submission."}})
		return
	}

	user, err := h.donors.Register(r.Context(), app.RegisterInput{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Age:             req.Age,
		BloodGroup:      req.BloodGroup,
		City:            req.City,
		State:           req.State,
	})
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "errors": ve.Problems})
		return
	case errors.Is(err, domain.ErrEmailTaken):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "errors": []string{"Email is already registered."}})
		return
	case err != nil:
		h.log.Error("registration failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "errors": []string{"Registration failed. Please try again."}})
		return
	}

	h.signIn(w, r, user)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var email, password string
	if r.Header.Get("Content-Type") == "application/json" {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request."})
			return
		}
		email, password = req.Email, req.Password
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid request."})
			return
		}
		email = r.PostFormValue("email")
		password = r.PostFormValue("password")
	}

	user, err := h.donors.Authenticate(r.Context(), email, password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid email or password."})
		return
	}

	h.signIn(w, r, user)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": user})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	// Dropping the session also ends the chat transcript's identity.
	if sid, ok := session.Values[sessionChatKey].(string); ok && sid != "" {
		if err := h.chat.Clear(r.Context(), sid); err != nil {
			h.log.Error("transcript clear on logout failed", "err", err)
		}
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		h.log.Error("session save failed", "err", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user domain.User) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values[sessionUserID] = user.ID
	session.Values[sessionUserKey] = user.Name
	if err := session.Save(r, w); err != nil {
		h.log.Error("session save failed", "err", err)
	}
}
