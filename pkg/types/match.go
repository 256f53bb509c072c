package types

import "time"

type SuggestionStatus string

const (
	SuggestionStatusSuggested SuggestionStatus = "suggested"
)

// MatchSuggestion is a derived, disposable pairing of a need with a candidate
// expert. Each full recompute discards all stored suggestions and persists the
// fresh top-3 per need.
type MatchSuggestion struct {
	ID           string           `db:"id" json:"id"`
	NeedID       string           `db:"need_id" json:"needId"`
	ExpertUserID string           `db:"expert_user_id" json:"expertUserId"`
	Score        float64          `db:"score" json:"score"`
	Reason       string           `db:"reason" json:"reason"`
	Status       SuggestionStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
}
