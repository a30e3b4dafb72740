package model

import "time"

// History actions written by the authority whenever a card changes.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// HistoryEntry is one append-only change record for a card. The client never
// writes entries, it only fetches and renders them. Old and new values are
// stored as opaque strings; nil means the value was absent.
type HistoryEntry struct {
	ID        int       `json:"id"`
	CardID    int       `json:"card_id"`
	UserID    *int      `json:"user_id"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	OldValue  *string   `json:"old_value"`
	NewValue  *string   `json:"new_value"`
	CreatedAt time.Time `json:"created_at"`
}
