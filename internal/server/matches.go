package server

import (
	"net/http"

	"matchfoundry/internal/match"
	"matchfoundry/pkg/types"
)

// handleComputeMatches runs a full recompute: read the active sets, score
// every candidate pairing, and replace the stored suggestions wholesale.
// User-triggered and idempotent; concurrent recomputes are last-writer-wins.
func (s *Service) handleComputeMatches(w http.ResponseWriter, r *http.Request) {
	needs, err := s.checkinRepo.ActiveNeeds(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	learnings, err := s.checkinRepo.ActiveLearnings(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	suggestions := match.Compute(needs, learnings)

	if err := s.suggestionRepo.ReplaceAll(r.Context(), suggestions); err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.logger.WithField("suggestions", len(suggestions)).Info("match recompute finished")

	s.respondJSON(w, http.StatusOK, suggestions)
}

type listQuery struct {
	UserID string `form:"userId"`
	Role   string `form:"role"`
}

type matchView struct {
	ID        string                 `json:"id"`
	Score     float64                `json:"score"`
	Reason    string                 `json:"reason"`
	Status    types.SuggestionStatus `json:"status"`
	Need      types.NeedSummary      `json:"need"`
	Expert    *types.UserSummary     `json:"expert,omitempty"`
	Requester *types.UserSummary     `json:"requester,omitempty"`
}

func (s *Service) handleListMatches(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	if q.UserID == "" || q.Role == "" {
		s.respondError(w, http.StatusBadRequest, "userId and role are required")
		return
	}

	switch types.UserRole(q.Role) {
	case types.UserRoleFounder:
		s.listFounderMatches(w, r, q.UserID)
	case types.UserRoleExpert:
		s.listExpertMatches(w, r, q.UserID)
	default:
		s.respondError(w, http.StatusBadRequest, "Unsupported role for matches")
	}
}

// listFounderMatches returns suggestions for needs owned by the founder, best
// score first, each with the suggested expert attached.
func (s *Service) listFounderMatches(w http.ResponseWriter, r *http.Request, userID string) {
	suggestions, err := s.suggestionRepo.SuggestionsForFounder(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	needsByID, usersByID, err := s.matchReferences(r, suggestions, func(m *types.MatchSuggestion) string {
		return m.ExpertUserID
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	views := make([]matchView, 0, len(suggestions))
	for _, m := range suggestions {
		view := matchView{
			ID:     m.ID,
			Score:  m.Score,
			Reason: m.Reason,
			Status: m.Status,
		}
		if need, ok := needsByID[m.NeedID]; ok {
			view.Need = need.Summary()
		}
		if expert, ok := usersByID[m.ExpertUserID]; ok {
			summary := expert.Summary()
			view.Expert = &summary
		}
		views = append(views, view)
	}

	s.respondJSON(w, http.StatusOK, views)
}

// listExpertMatches returns incoming suggestions naming the user as expert,
// newest first, each with the founder who owns the need attached.
func (s *Service) listExpertMatches(w http.ResponseWriter, r *http.Request, userID string) {
	suggestions, err := s.suggestionRepo.SuggestionsForExpert(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	needsByID, usersByID, err := s.matchReferences(r, suggestions, nil)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	views := make([]matchView, 0, len(suggestions))
	for _, m := range suggestions {
		view := matchView{
			ID:     m.ID,
			Score:  m.Score,
			Reason: m.Reason,
			Status: m.Status,
		}
		if need, ok := needsByID[m.NeedID]; ok {
			view.Need = need.Summary()
			if owner, ok := usersByID[need.UserID]; ok {
				summary := owner.Summary()
				view.Requester = &summary
			}
		}
		views = append(views, view)
	}

	s.respondJSON(w, http.StatusOK, views)
}

// matchReferences loads the needs behind a suggestion batch plus the users the
// views embed: the need owners and, when extraUser is set, one extra user per
// suggestion (the expert).
func (s *Service) matchReferences(
	r *http.Request,
	suggestions []*types.MatchSuggestion,
	extraUser func(*types.MatchSuggestion) string,
) (map[string]*types.Need, map[string]*types.User, error) {
	needIDs := make([]string, 0, len(suggestions))
	seenNeeds := make(map[string]struct{}, len(suggestions))
	for _, m := range suggestions {
		if _, ok := seenNeeds[m.NeedID]; ok {
			continue
		}
		seenNeeds[m.NeedID] = struct{}{}
		needIDs = append(needIDs, m.NeedID)
	}

	needs, err := s.checkinRepo.NeedsByIDs(r.Context(), needIDs)
	if err != nil {
		return nil, nil, err
	}

	needsByID := make(map[string]*types.Need, len(needs))
	userIDs := make([]string, 0, len(suggestions)+len(needs))
	seenUsers := make(map[string]struct{})
	for _, need := range needs {
		needsByID[need.ID] = need
		if _, ok := seenUsers[need.UserID]; !ok {
			seenUsers[need.UserID] = struct{}{}
			userIDs = append(userIDs, need.UserID)
		}
	}

	if extraUser != nil {
		for _, m := range suggestions {
			id := extraUser(m)
			if _, ok := seenUsers[id]; ok {
				continue
			}
			seenUsers[id] = struct{}{}
			userIDs = append(userIDs, id)
		}
	}

	users, err := s.userRepo.UsersByIDs(r.Context(), userIDs)
	if err != nil {
		return nil, nil, err
	}

	usersByID := make(map[string]*types.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	return needsByID, usersByID, nil
}
