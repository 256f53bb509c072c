package server

import (
	"net/http"

	"matchfoundry/pkg/types"
)

type adminOverview struct {
	ActiveNeedsCount      int64                  `json:"activeNeedsCount"`
	ActiveLearningsCount  int64                  `json:"activeLearningsCount"`
	MatchSuggestionsCount int64                  `json:"matchSuggestionsCount"`
	ScheduledChatsCount   int64                  `json:"scheduledChatsCount"`
	NeedsByCategory       []*types.CategoryCount `json:"needsByCategory"`
	LearningsByCategory   []*types.CategoryCount `json:"learningsByCategory"`
}

func (s *Service) handleAdminOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var overview adminOverview
	var err error

	if overview.ActiveNeedsCount, err = s.checkinRepo.CountActiveNeeds(ctx); err != nil {
		s.respondServiceError(w, err)
		return
	}
	if overview.ActiveLearningsCount, err = s.checkinRepo.CountActiveLearnings(ctx); err != nil {
		s.respondServiceError(w, err)
		return
	}
	if overview.MatchSuggestionsCount, err = s.suggestionRepo.Count(ctx); err != nil {
		s.respondServiceError(w, err)
		return
	}
	if overview.ScheduledChatsCount, err = s.chatRepo.CountByStatus(ctx, types.ChatStatusScheduled); err != nil {
		s.respondServiceError(w, err)
		return
	}
	if overview.NeedsByCategory, err = s.checkinRepo.ActiveNeedCountsByCategory(ctx); err != nil {
		s.respondServiceError(w, err)
		return
	}
	if overview.LearningsByCategory, err = s.checkinRepo.ActiveLearningCountsByCategory(ctx); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, overview)
}
