package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password"`
}

type loginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type passwordRequest struct {
	NewPassword string `json:"new_password"`
}

// UserPatch is a partial user update. Nil fields are left untouched by the
// authority. Capability flags may only be set through the admin path.
type UserPatch struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	IsAdmin   *bool   `json:"is_admin,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	CanView   *bool   `json:"can_view,omitempty"`
	CanEdit   *bool   `json:"can_edit,omitempty"`
	CanDelete *bool   `json:"can_delete,omitempty"`
}

// TouchesActivationOrAdmin reports whether the patch changes is_active or
// is_admin, the two flags a user may never toggle on themselves.
func (p UserPatch) TouchesActivationOrAdmin() bool {
	return p.IsActive != nil || p.IsAdmin != nil
}

func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/users/", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	var user model.User
	if err := c.post(ctx, "/users/", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login authenticates by name and password. A 401 maps to ErrBadCredentials
// and a 403 to ErrNotActivated; anything else surfaces as an *APIError.
func (c *Client) Login(ctx context.Context, name, password string) (*model.User, error) {
	var user model.User
	err := c.post(ctx, "/login", loginRequest{Name: name, Password: password}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusUnauthorized:
				return nil, ErrBadCredentials
			case http.StatusForbidden:
				return nil, ErrNotActivated
			}
		}
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int, patch UserPatch) (*model.User, error) {
	var user model.User
	if err := c.patch(ctx, fmt.Sprintf("/users/%d", id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword is the self-service path; the authority clears
// must_change_password on success.
func (c *Client) ChangePassword(ctx context.Context, id int, newPassword string) (*model.User, error) {
	var user model.User
	if err := c.post(ctx, fmt.Sprintf("/users/%d/change_password", id), passwordRequest{NewPassword: newPassword}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ResetPassword is the admin path; the authority sets must_change_password
// so the user has to pick a password on next login.
func (c *Client) ResetPassword(ctx context.Context, id int, newPassword string) (*model.User, error) {
	var user model.User
	if err := c.post(ctx, fmt.Sprintf("/users/%d/reset_password", id), passwordRequest{NewPassword: newPassword}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
