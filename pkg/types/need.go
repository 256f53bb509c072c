package types

import "time"

// Need is a founder's active request for help in a category. Exactly one set
// of needs is active per user; a check-in deactivates the prior generation and
// inserts the new one (full replace, never merge).
type Need struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Label      string    `db:"label" json:"label"`
	Category   Category  `db:"category" json:"category"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	Generation int       `db:"checkin_generation" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Learning mirrors Need but represents something the user can teach or offer.
// Its active-set lifecycle is independent of needs.
type Learning struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Label      string    `db:"label" json:"label"`
	Category   Category  `db:"category" json:"category"`
	IsActive   bool      `db:"is_active" json:"isActive"`
	Generation int       `db:"checkin_generation" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// NeedSummary is the embedded shape used in match and chat listings.
type NeedSummary struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Category Category `json:"category"`
}

func (n *Need) Summary() NeedSummary {
	return NeedSummary{ID: n.ID, Label: n.Label, Category: n.Category}
}

// CheckinItem is one structured entry produced by the extraction collaborator
// and submitted on check-in.
type CheckinItem struct {
	Label    string `json:"label"`
	Category string `json:"category"`
}

// CategoryCount is one row of the per-category active breakdown on the admin
// overview.
type CategoryCount struct {
	Category Category `db:"category" json:"category"`
	Count    int64    `db:"count" json:"count"`
}
