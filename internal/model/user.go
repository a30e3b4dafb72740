package model

import "time"

type User struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email,omitempty"`
	IsAdmin            bool      `json:"is_admin"`
	IsActive           bool      `json:"is_active"`
	CanView            bool      `json:"can_view"`
	CanEdit            bool      `json:"can_edit"`
	CanDelete          bool      `json:"can_delete"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}
