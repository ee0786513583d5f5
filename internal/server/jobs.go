package server

import (
	"encoding/json"
	"net/http"
)

type runJobRequest struct {
	JobID string `json:"jobId"`
}

type runJobResponse struct {
	Success   bool   `json:"success"`
	JobID     string `json:"jobId"`
	CardCount int    `json:"cardCount"`
}

// handleRunJob is the job-run callable. The caller identity comes from the
// execution context; errors surface as categorized envelopes.
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	var req runJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]errorBody{
			"error": {Code: "invalid-argument", Message: "invalid request body"},
		})
		return
	}

	caller := CallerID(r.Context())
	count, err := s.runner.Run(r.Context(), req.JobID, caller)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, runJobResponse{
		Success:   true,
		JobID:     req.JobID,
		CardCount: count,
	})
}
