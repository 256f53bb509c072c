package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"matchfoundry/pkg/types"
)

type checkinRequest struct {
	UserID    string              `json:"userId"`
	Needs     []types.CheckinItem `json:"needs"`
	Learnings []types.CheckinItem `json:"learnings"`
}

// handleCheckin replaces the caller's active needs and learnings wholesale.
// Prior entries are deactivated, never deleted.
func (s *Service) handleCheckin(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.UserID == "" {
		s.respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	if _, err := s.userRepo.User(r.Context(), req.UserID); err != nil {
		s.respondServiceError(w, err)
		return
	}

	if err := s.checkinRepo.ReplaceActive(r.Context(), req.UserID, req.Needs, req.Learnings); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.logger.WithField("user_id", req.UserID).Info("checkin saved")

	s.respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type extractRequest struct {
	Text string `json:"text"`
}

func (s *Service) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}

	result, err := s.extractor.Extract(r.Context(), req.Text)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, result)
}
