package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"matchfoundry/internal/chat"
	"matchfoundry/internal/notify"
	"matchfoundry/internal/utils"
	"matchfoundry/pkg/types"

	"github.com/alexedwards/flow"
)

type createChatRequest struct {
	NeedID      string `json:"needId"`
	RequesterID string `json:"requesterId"`
	ExpertID    string `json:"expertId"`
}

func (s *Service) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := s.chats.Create(r.Context(), req.NeedID, req.RequesterID, req.ExpertID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	// Notify the expert off the request path; delivery failure never fails
	// the chat creation.
	go s.notifyChatRequested(created)

	s.respondJSON(w, http.StatusOK, created)
}

type chatView struct {
	ID            string                `json:"id"`
	Status        types.ChatStatus      `json:"status"`
	MeetingLink   *string               `json:"meetingLink"`
	ChosenSlotID  *string               `json:"chosenSlotId"`
	Need          types.NeedSummary     `json:"need"`
	Requester     *types.UserSummary    `json:"requester,omitempty"`
	Expert        *types.UserSummary    `json:"expert,omitempty"`
	ProposedSlots []*types.ProposedSlot `json:"proposedSlots"`
}

func (s *Service) handleListChats(w http.ResponseWriter, r *http.Request) {
	var q listQuery
	if err := decoder.Decode(&q, r.URL.Query()); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query parameters")
		return
	}

	if q.UserID == "" || q.Role == "" {
		s.respondError(w, http.StatusBadRequest, "userId and role are required")
		return
	}

	var asExpert bool
	switch types.UserRole(q.Role) {
	case types.UserRoleFounder:
		asExpert = false
	case types.UserRoleExpert:
		asExpert = true
	default:
		s.respondError(w, http.StatusBadRequest, "Unsupported role for chats")
		return
	}

	chats, err := s.chatRepo.ChatsByUser(r.Context(), q.UserID, asExpert)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	views, err := s.chatViews(r.Context(), chats)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, views)
}

type proposeSlotsRequest struct {
	Slots []chat.SlotInput `json:"slots"`
}

func (s *Service) handleProposeSlots(w http.ResponseWriter, r *http.Request) {
	chatID := flow.Param(r.Context(), "chatID")

	var req proposeSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := s.chats.ProposeSlots(r.Context(), chatID, req.Slots)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

type selectSlotRequest struct {
	SlotID string `json:"slotId"`
}

func (s *Service) handleSelectSlot(w http.ResponseWriter, r *http.Request) {
	chatID := flow.Param(r.Context(), "chatID")

	var req selectSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scheduled, err := s.chats.SelectSlot(r.Context(), chatID, req.SlotID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	go s.notifyChatScheduled(scheduled)

	s.respondJSON(w, http.StatusOK, scheduled)
}

func (s *Service) chatViews(ctx context.Context, chats []*types.CoffeeChat) ([]chatView, error) {
	chatIDs := make([]string, 0, len(chats))
	needIDs := make([]string, 0, len(chats))
	userIDs := make([]string, 0, 2*len(chats))
	seenNeeds := make(map[string]struct{})
	seenUsers := make(map[string]struct{})

	for _, c := range chats {
		chatIDs = append(chatIDs, c.ID)
		if _, ok := seenNeeds[c.NeedID]; !ok {
			seenNeeds[c.NeedID] = struct{}{}
			needIDs = append(needIDs, c.NeedID)
		}
		for _, id := range []string{c.RequesterID, c.ExpertID} {
			if _, ok := seenUsers[id]; !ok {
				seenUsers[id] = struct{}{}
				userIDs = append(userIDs, id)
			}
		}
	}

	slots, err := s.chatRepo.SlotsByChats(ctx, chatIDs)
	if err != nil {
		return nil, err
	}
	slotsByChat := make(map[string][]*types.ProposedSlot, len(chats))
	for _, slot := range slots {
		slotsByChat[slot.CoffeeChatID] = append(slotsByChat[slot.CoffeeChatID], slot)
	}

	needs, err := s.checkinRepo.NeedsByIDs(ctx, needIDs)
	if err != nil {
		return nil, err
	}
	needsByID := make(map[string]*types.Need, len(needs))
	for _, need := range needs {
		needsByID[need.ID] = need
	}

	users, err := s.userRepo.UsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	usersByID := make(map[string]*types.User, len(users))
	for _, user := range users {
		usersByID[user.ID] = user
	}

	views := make([]chatView, 0, len(chats))
	for _, c := range chats {
		view := chatView{
			ID:            c.ID,
			Status:        c.Status,
			MeetingLink:   c.MeetingLink,
			ChosenSlotID:  c.ChosenSlotID,
			ProposedSlots: slotsByChat[c.ID],
		}
		if view.ProposedSlots == nil {
			view.ProposedSlots = []*types.ProposedSlot{}
		}
		if need, ok := needsByID[c.NeedID]; ok {
			view.Need = need.Summary()
		}
		if requester, ok := usersByID[c.RequesterID]; ok {
			summary := requester.Summary()
			view.Requester = &summary
		}
		if expert, ok := usersByID[c.ExpertID]; ok {
			summary := expert.Summary()
			view.Expert = &summary
		}
		views = append(views, view)
	}

	return views, nil
}

func (s *Service) notifyChatRequested(c *types.CoffeeChat) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	expert, err := s.userRepo.User(ctx, c.ExpertID)
	if err != nil {
		s.logger.WithError(err).Warn("skipping chat-requested notification")
		return
	}
	requester, err := s.userRepo.User(ctx, c.RequesterID)
	if err != nil {
		s.logger.WithError(err).Warn("skipping chat-requested notification")
		return
	}

	msg := notify.Message{
		To:      expert.Email,
		Subject: fmt.Sprintf("%s wants a coffee chat", requester.Name),
		Body: fmt.Sprintf(
			"%s requested a coffee chat with you on MatchFoundry. Propose a few time slots to get it scheduled.",
			requester.Name,
		),
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.WithError(err).Error("failed to send chat-requested notification")
	}
}

func (s *Service) notifyChatScheduled(c *types.CoffeeChat) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requester, err := s.userRepo.User(ctx, c.RequesterID)
	if err != nil {
		s.logger.WithError(err).Warn("skipping chat-scheduled notification")
		return
	}
	expert, err := s.userRepo.User(ctx, c.ExpertID)
	if err != nil {
		s.logger.WithError(err).Warn("skipping chat-scheduled notification")
		return
	}

	for _, recipient := range []*types.User{requester, expert} {
		msg := notify.Message{
			To:      recipient.Email,
			Subject: "Your coffee chat is scheduled",
			Body: fmt.Sprintf(
				"Your coffee chat is locked in. Join with this link: %s",
				utils.PtrString(c.MeetingLink),
			),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			s.logger.WithError(err).Error("failed to send chat-scheduled notification")
		}
	}
}
