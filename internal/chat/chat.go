// Package chat drives the coffee-chat negotiation between a requester and an
// expert: request -> slots proposed -> slot chosen -> scheduled. The state
// machine is linear and terminal; there is no cancellation path.
package chat

import (
	"context"
	"fmt"
	"time"

	"matchfoundry/pkg/types"

	"github.com/sirupsen/logrus"
)

// Store is the persistence contract the negotiation needs. ApplySelection must
// be atomic: either every sub-effect of a selection lands or none do, and a
// selection against a chat that already left the proposed state must fail with
// types.ErrChatAlreadyScheduled.
type Store interface {
	CreateChat(ctx context.Context, chat *types.CoffeeChat) error
	Chat(ctx context.Context, chatID string) (*types.CoffeeChat, error)
	Slot(ctx context.Context, slotID string) (*types.ProposedSlot, error)
	SlotsByChat(ctx context.Context, chatID string) ([]*types.ProposedSlot, error)
	AddSlots(ctx context.Context, slots []*types.ProposedSlot) error
	ApplySelection(ctx context.Context, sel *Selection) error
}

// LinkGenerator produces the meeting URL for a chat. It must be deterministic
// per chat id.
type LinkGenerator interface {
	Link(chatID string) string
}

// SlotInput is one candidate time window submitted by the expert.
type SlotInput struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Selection is the resolved outcome of a slot choice, applied by the store as
// one unit.
type Selection struct {
	ChatID         string
	SlotID         string
	MeetingLink    string
	ExpiredSlotIDs []string
}

type Service struct {
	store  Store
	links  LinkGenerator
	logger *logrus.Logger
}

func NewService(store Store, links LinkGenerator, logger *logrus.Logger) *Service {
	return &Service{store: store, links: links, logger: logger}
}

// Create opens a new negotiation in the proposed state. Repeated calls create
// distinct chats; duplicate prevention is the caller's concern.
func (s *Service) Create(ctx context.Context, needID, requesterID, expertID string) (*types.CoffeeChat, error) {
	if needID == "" || requesterID == "" || expertID == "" {
		return nil, fmt.Errorf("%w: needId, requesterId and expertId are required", types.ErrInvalidInput)
	}

	chat := &types.CoffeeChat{
		NeedID:      needID,
		RequesterID: requesterID,
		ExpertID:    expertID,
		Status:      types.ChatStatusProposed,
	}

	if err := s.store.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id":      chat.ID,
		"need_id":      needID,
		"requester_id": requesterID,
		"expert_id":    expertID,
	}).Info("coffee chat requested")

	return chat, nil
}

// ProposeSlots appends candidate time windows to a chat. Slots accumulate
// across calls; proposing never clears earlier slots and never changes the
// chat status.
func (s *Service) ProposeSlots(ctx context.Context, chatID string, inputs []SlotInput) (*types.CoffeeChat, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId is required", types.ErrInvalidInput)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: slots array is required", types.ErrInvalidInput)
	}
	for i, in := range inputs {
		if in.StartTime.IsZero() || in.EndTime.IsZero() {
			return nil, fmt.Errorf("%w: slot %d is missing startTime or endTime", types.ErrInvalidInput, i)
		}
		if !in.EndTime.After(in.StartTime) {
			return nil, fmt.Errorf("%w: slot %d must end after it starts", types.ErrInvalidInput, i)
		}
	}

	chat, err := s.store.Chat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	slots := make([]*types.ProposedSlot, 0, len(inputs))
	for _, in := range inputs {
		slots = append(slots, &types.ProposedSlot{
			CoffeeChatID: chat.ID,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			Status:       types.SlotStatusPending,
		})
	}

	if err := s.store.AddSlots(ctx, slots); err != nil {
		return nil, fmt.Errorf("add slots: %w", err)
	}

	return s.chatWithSlots(ctx, chat.ID)
}

// SelectSlot commits the chat to one slot: the chat becomes scheduled with a
// meeting link, the chosen slot becomes selected, and every other slot of the
// chat expires. All four effects apply atomically; a concurrent selection on
// the same chat loses with types.ErrChatAlreadyScheduled.
func (s *Service) SelectSlot(ctx context.Context, chatID, slotID string) (*types.CoffeeChat, error) {
	if chatID == "" || slotID == "" {
		return nil, fmt.Errorf("%w: chatId and slotId are required", types.ErrInvalidInput)
	}

	chat, err := s.store.Chat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	slot, err := s.store.Slot(ctx, slotID)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.SlotsByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	sel, err := resolveSelection(chat, slots, slot, s.links.Link(chat.ID))
	if err != nil {
		return nil, err
	}

	if err := s.store.ApplySelection(ctx, sel); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"chat_id": chat.ID,
		"slot_id": slot.ID,
	}).Info("coffee chat scheduled")

	return s.chatWithSlots(ctx, chat.ID)
}

// ChatWithSlots loads a chat and its proposed slots.
func (s *Service) ChatWithSlots(ctx context.Context, chatID string) (*types.CoffeeChat, error) {
	if chatID == "" {
		return nil, fmt.Errorf("%w: chatId is required", types.ErrInvalidInput)
	}
	return s.chatWithSlots(ctx, chatID)
}

func (s *Service) chatWithSlots(ctx context.Context, chatID string) (*types.CoffeeChat, error) {
	chat, err := s.store.Chat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	slots, err := s.store.SlotsByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	chat.Slots = slots

	return chat, nil
}

// resolveSelection computes the outcome of choosing slotID for chat. Pure: it
// validates the transition and partitions the slots without touching storage.
func resolveSelection(chat *types.CoffeeChat, slots []*types.ProposedSlot, slot *types.ProposedSlot, link string) (*Selection, error) {
	if chat.Status != types.ChatStatusProposed {
		return nil, types.ErrChatAlreadyScheduled
	}

	if slot.CoffeeChatID != chat.ID {
		return nil, fmt.Errorf("%w: slot %s belongs to chat %s", types.ErrSlotWrongChat, slot.ID, slot.CoffeeChatID)
	}

	sel := &Selection{
		ChatID:      chat.ID,
		SlotID:      slot.ID,
		MeetingLink: link,
	}

	for _, other := range slots {
		if other.ID == slot.ID {
			continue
		}
		sel.ExpiredSlotIDs = append(sel.ExpiredSlotIDs, other.ID)
	}

	return sel, nil
}
