package model

import (
	"strings"
	"time"
)

// Priority colors used as card labels. Anything else renders verbatim.
const (
	PriorityHigh   = "#dc2626"
	PriorityMedium = "#eab308"
	PriorityLow    = "#16a34a"
	PriorityNone   = "#6b7280"
)

type Card struct {
	ID          int        `json:"id"`
	ColumnID    int        `json:"column_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Link        string     `json:"link,omitempty"`
	DueDate     *time.Time `json:"due_date"`
	Color       string     `json:"color,omitempty"`
	AssigneeID  *int       `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

// PriorityLabel maps a priority color to its human label. Unknown colors
// come back unchanged.
func PriorityLabel(hex string) string {
	switch strings.ToLower(hex) {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	case PriorityNone, "":
		return "None"
	default:
		return hex
	}
}
