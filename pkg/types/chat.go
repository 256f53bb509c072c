package types

import "time"

type ChatStatus string

const (
	ChatStatusProposed  ChatStatus = "proposed"
	ChatStatusScheduled ChatStatus = "scheduled"
)

type SlotStatus string

const (
	SlotStatusPending  SlotStatus = "pending"
	SlotStatusSelected SlotStatus = "selected"
	SlotStatusExpired  SlotStatus = "expired"
)

// CoffeeChat is one scheduling negotiation between a requester and an expert,
// tied to a single need. The requester/expert/need triple is immutable after
// creation; status only ever moves proposed -> scheduled.
type CoffeeChat struct {
	ID           string     `db:"id" json:"id"`
	NeedID       string     `db:"need_id" json:"needId"`
	RequesterID  string     `db:"requester_id" json:"requesterId"`
	ExpertID     string     `db:"expert_id" json:"expertId"`
	Status       ChatStatus `db:"status" json:"status"`
	ChosenSlotID *string    `db:"chosen_slot_id" json:"chosenSlotId"`
	MeetingLink  *string    `db:"meeting_link" json:"meetingLink"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`

	Slots []*ProposedSlot `db:"-" json:"proposedSlots,omitempty"`
}

// ProposedSlot is one candidate meeting time within a chat. Once a slot is
// selected the rest expire; neither status transitions back.
type ProposedSlot struct {
	ID           string     `db:"id" json:"id"`
	CoffeeChatID string     `db:"coffee_chat_id" json:"coffeeChatId"`
	StartTime    time.Time  `db:"start_time" json:"startTime"`
	EndTime      time.Time  `db:"end_time" json:"endTime"`
	Status       SlotStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
