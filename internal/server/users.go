package server

import "net/http"

func (s *Service) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userRepo.Users(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, users)
}
