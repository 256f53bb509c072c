package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchfoundry/pkg/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithError(err).Error("failed to encode response")
	}
}

func (s *Service) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, errorResponse{Error: message})
}

// respondServiceError maps the error taxonomy onto status codes: validation
// failures are 400, missing records 404, lost select races 409, everything
// else an opaque 500.
func (s *Service) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidInput), errors.Is(err, types.ErrSlotWrongChat):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrUserNotFound),
		errors.Is(err, types.ErrNeedNotFound),
		errors.Is(err, types.ErrChatNotFound),
		errors.Is(err, types.ErrSlotNotFound),
		errors.Is(err, types.ErrSuggestionNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrChatAlreadyScheduled):
		s.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrInvalidCredentials):
		s.respondError(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		s.logger.WithError(err).Error("internal error")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
