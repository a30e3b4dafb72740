package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/api"
	"github.com/jonatankoch/kanbanboard/internal/model"
)

// Login authenticates against the authority. On success the identity is
// installed on the session and attached to every following call; a login
// carrying must_change_password parks the session in the forced
// password-change state before any content becomes editable. On failure
// the persisted identity slot is cleared and the error distinguishes bad
// credentials from a not-yet-activated account.
func (a *App) Login(ctx context.Context, name, password string) (*model.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(password) == "" {
		return nil, errEmptyCredentials
	}

	a.session.LoginStarted()
	user, err := a.client.Login(ctx, strings.TrimSpace(name), password)
	if err != nil {
		a.session.LoginFailed()
		a.client.ClearIdentity()
		return nil, err
	}

	a.session.LoginSucceeded(user)
	a.client.SetIdentity(user.ID)
	a.store.UpsertUser(*user)
	return user, nil
}

// Register creates an account. Whether the fresh account is already active
// is the authority's decision; only an active account signs in right away,
// otherwise the session stays anonymous pending admin activation.
func (a *App) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(password) == "" {
		return nil, errEmptyCredentials
	}

	a.session.RegisterStarted()
	user, err := a.client.Register(ctx, api.RegisterRequest{
		Name:     strings.TrimSpace(name),
		Email:    strings.TrimSpace(email),
		Password: password,
	})
	if err != nil {
		a.session.RegisterFinished(nil)
		return nil, err
	}

	a.store.UpsertUser(*user)
	a.session.RegisterFinished(user)
	if a.session.Current() != nil {
		a.client.SetIdentity(user.ID)
	}
	return user, nil
}

// Logout drops the identity and stops sending the identity header.
func (a *App) Logout() {
	a.session.Logout()
	a.client.ClearIdentity()
}

// ChangePassword is the self-service path after login, used to resolve a
// forced password change. The authority clears must_change_password.
func (a *App) ChangePassword(ctx context.Context, newPassword, confirmation string) error {
	current := a.session.Current()
	if current == nil {
		a.deny("changePassword", "not authenticated")
		return nil
	}
	if strings.TrimSpace(newPassword) == "" || strings.TrimSpace(confirmation) == "" {
		return errEmptyPassword
	}
	if newPassword != confirmation {
		return errPasswordMismatch
	}
	if len(newPassword) < 6 {
		return errPasswordTooShort
	}

	user, err := a.client.ChangePassword(ctx, current.ID, newPassword)
	if err != nil {
		return err
	}
	a.session.PasswordChanged(user)
	a.store.UpsertUser(*user)
	return nil
}

// ResetPassword sets a temporary password for another account and flags it
// for a forced change on next login. Admin only.
func (a *App) ResetPassword(ctx context.Context, userID int, newPassword string) error {
	if !a.session.Capabilities().IsAdmin {
		a.deny("resetPassword", "requires admin")
		return nil
	}
	if strings.TrimSpace(newPassword) == "" {
		return errEmptyPassword
	}

	user, err := a.client.ResetPassword(ctx, userID, newPassword)
	if err != nil {
		a.log.Error("password reset failed", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	a.store.UpsertUser(*user)
	a.session.UserUpdated(user)
	return nil
}

// UpdateUser applies a partial user update. A user may never toggle their
// own is_active or is_admin flag; capability flags on any account require
// admin rights. Denied checks are silent no-ops.
func (a *App) UpdateUser(ctx context.Context, userID int, patch api.UserPatch) error {
	current := a.session.Current()
	if current == nil {
		a.deny("updateUser", "not authenticated")
		return nil
	}
	caps := a.session.Capabilities()
	if userID == current.ID && patch.TouchesActivationOrAdmin() {
		a.deny("updateUser", "cannot change own activation or admin flag")
		return nil
	}
	if touchesCapabilities(patch) && !caps.IsAdmin {
		a.deny("updateUser", "capability flags require admin")
		return nil
	}
	if userID != current.ID && !caps.IsAdmin {
		a.deny("updateUser", "editing another account requires admin")
		return nil
	}

	user, err := a.client.UpdateUser(ctx, userID, patch)
	if err != nil {
		a.log.Error("user update failed", zap.Int("user_id", userID), zap.Error(err))
		return err
	}
	a.store.UpsertUser(*user)
	a.session.UserUpdated(user)
	return nil
}

func touchesCapabilities(patch api.UserPatch) bool {
	return patch.IsAdmin != nil || patch.IsActive != nil ||
		patch.CanView != nil || patch.CanEdit != nil || patch.CanDelete != nil
}
