package model

import "time"

type Column struct {
	ID        int       `json:"id"`
	BoardID   int       `json:"board_id"`
	Title     string    `json:"title"`
	Color     string    `json:"color,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
