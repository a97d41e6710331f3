package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bloodlink-service/internal/app"
	"bloodlink-service/internal/domain"
	"github.com/gorilla/mux"
)

type bloodRequestRequest struct {
	RequesterName string `json:"requester_name"`
	BloodGroup    string `json:"blood_group"`
	City          string `json:"city"`
	State         string `json:"state"`
	Message       string `json:"message"`
}

// handleCreateRequest files a blood request and kicks off donor matching.
// Open to anyone, signed in or not, like the original request form.
func (h *Handler) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var req bloodRequestRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Invalid form submission."}})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Invalid form submission."}})
			return
		}
		req.RequesterName = r.PostFormValue("requester_name")
		req.BloodGroup = r.PostFormValue("blood_group")
		req.City = r.PostFormValue("city")
		req.State = r.PostFormValue("state")
		req.Message = r.PostFormValue("message")
	}

	created, notified, err := h.donors.CreateRequest(r.Context(), app.RequestInput{
		RequesterName: req.RequesterName,
		BloodGroup:    req.BloodGroup,
		City:          req.City,
		State:         req.State,
		Message:       req.Message,
	})
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "errors": ve.Problems})
		return
	case err != nil:
		h.log.Error("blood request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "errors": []string{"Could not submit your request. Please try again."}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"request":         created,
		"donors_notified": notified,
	})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.donors.Dashboard(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.log.Error("dashboard failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "dashboard": dash})
}

func (h *Handler) handleBookAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date   string `json:"date"`
		Center string `json:"center"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "errors": []string{"Invalid request."}})
		return
	}
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "errors": []string{"Invalid appointment date."}})
		return
	}

	appt, err := h.donors.BookAppointment(r.Context(), userIDFrom(r.Context()), date, req.Center)
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "errors": ve.Problems})
		return
	case err != nil:
		h.log.Error("appointment booking failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "errors": []string{"Could not book the appointment."}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointment": appt})
}

func (h *Handler) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	appts, err := h.donors.Appointments(r.Context(), userIDFrom(r.Context()))
	if err != nil {
		h.log.Error("appointment list failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
		return
	}
	if appts == nil {
		appts = []domain.Appointment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "appointments": appts})
}

func (h *Handler) handleCancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Invalid appointment id."})
		return
	}
	err = h.donors.CancelAppointment(r.Context(), userIDFrom(r.Context()), id)
	switch {
	case errors.Is(err, domain.ErrAppointmentNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": "Appointment not found."})
		return
	case errors.Is(err, domain.ErrAppointmentNotPending):
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Only pending appointments can be cancelled."})
		return
	case err != nil:
		h.log.Error("appointment cancel failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": "Could not cancel the appointment."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
