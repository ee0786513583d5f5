package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleShareEvent bumps one share counter. The counter name is part of the
// path; likes and saves are idempotent per caller identity.
func (s *Server) handleShareEvent(w http.ResponseWriter, r *http.Request) {
	shareID := chi.URLParam(r, "shareID")
	counter := chi.URLParam(r, "counter")
	caller := CallerID(r.Context())

	counted, err := s.social.RecordShareEvent(r.Context(), shareID, counter, caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"counted": counted,
	})
}

// handleCheckin claims the daily check-in for the calling user.
func (s *Server) handleCheckin(w http.ResponseWriter, r *http.Request) {
	result, err := s.social.Checkin(r.Context(), CallerID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	question, err := s.social.SecurityQuestion(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"question": question})
}

type resetPasswordRequest struct {
	Answer      string `json:"answer"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]errorBody{
			"error": {Code: "invalid-argument", Message: "invalid request body"},
		})
		return
	}

	userID := chi.URLParam(r, "userID")
	if err := s.social.ResetPassword(r.Context(), userID, req.Answer, req.NewPassword); err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
