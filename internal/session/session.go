// Package session holds the current authenticated identity and derives the
// capability flags that gate every mutation.
package session

import (
	"go.uber.org/zap"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

// State is the authentication state machine.
type State int

const (
	StateAnonymous State = iota
	StateLoggingIn
	StateRegistering
	StateAuthenticated
	// StatePasswordChangeRequired is entered right after a login whose
	// response carries must_change_password, before any board content is
	// treated as editable.
	StatePasswordChangeRequired
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateLoggingIn:
		return "logging-in"
	case StateRegistering:
		return "registering"
	case StateAuthenticated:
		return "authenticated"
	case StatePasswordChangeRequired:
		return "password-change-required"
	default:
		return "unknown"
	}
}

// Capabilities are the four booleans derived from the current user. An
// anonymous session is a read-only viewer.
type Capabilities struct {
	CanView   bool
	CanEdit   bool
	CanDelete bool
	IsAdmin   bool
}

// Session owns the current identity for exactly one active client. Not safe
// for concurrent use; the board UI drives it from a single goroutine.
type Session struct {
	storage Storage
	log     *zap.Logger

	state     State
	user      *model.User
	buildMode bool
}

// New restores the session from storage. A persisted identity resumes as
// authenticated (or password-change-required if the flag is still set); an
// empty slot starts anonymous.
func New(storage Storage, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Session{storage: storage, log: logger, state: StateAnonymous}

	user, err := storage.Load()
	if err != nil {
		return nil, err
	}
	if user != nil {
		s.user = user
		s.state = StateAuthenticated
		if user.MustChangePassword {
			s.state = StatePasswordChangeRequired
		}
		s.log.Debug("session restored", zap.String("user", user.Name))
	}
	return s, nil
}

func (s *Session) State() State { return s.state }

// Current returns the authenticated user, nil when anonymous.
func (s *Session) Current() *model.User { return s.user }

// BuildMode reports whether structural edits are unlocked.
func (s *Session) BuildMode() bool { return s.buildMode }

// Capabilities derives the permission flags from the current user.
func (s *Session) Capabilities() Capabilities {
	if s.user == nil {
		return Capabilities{CanView: true}
	}
	return Capabilities{
		CanView:   s.user.CanView,
		CanEdit:   s.user.CanEdit,
		CanDelete: s.user.CanDelete,
		IsAdmin:   s.user.IsAdmin,
	}
}

// SetBuildMode toggles the structural-edit mode. Only an admin may enable
// it; for everyone else this is a no-op.
func (s *Session) SetBuildMode(on bool) {
	if on && !s.Capabilities().IsAdmin {
		s.log.Debug("build mode denied: not an admin")
		return
	}
	s.buildMode = on
}

// LoginStarted marks the transition Anonymous -> LoggingIn.
func (s *Session) LoginStarted() {
	s.state = StateLoggingIn
}

// LoginSucceeded installs the authenticated user and persists it. A
// must_change_password flag parks the session in password-change-required.
func (s *Session) LoginSucceeded(user *model.User) {
	s.user = user
	s.state = StateAuthenticated
	if user.MustChangePassword {
		s.state = StatePasswordChangeRequired
	}
	if err := s.storage.Save(user); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}

// LoginFailed returns to anonymous and clears the persisted slot.
func (s *Session) LoginFailed() {
	s.user = nil
	s.state = StateAnonymous
	if err := s.storage.Clear(); err != nil {
		s.log.Error("clear session slot", zap.Error(err))
	}
}

// RegisterStarted marks the transition Anonymous -> Registering.
func (s *Session) RegisterStarted() {
	s.state = StateRegistering
}

// RegisterFinished completes registration. Only an already-active account
// signs in immediately; otherwise the session stays anonymous pending admin
// activation.
func (s *Session) RegisterFinished(user *model.User) {
	if user != nil && user.IsActive {
		s.LoginSucceeded(user)
		return
	}
	s.user = nil
	s.state = StateAnonymous
}

// PasswordChanged installs the post-change user payload and resumes the
// authenticated state.
func (s *Session) PasswordChanged(user *model.User) {
	s.user = user
	s.state = StateAuthenticated
	if err := s.storage.Save(user); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}

// UserUpdated refreshes the session copy when an update targeted the
// current identity. Updates for other users are ignored.
func (s *Session) UserUpdated(user *model.User) {
	if s.user == nil || user == nil || s.user.ID != user.ID {
		return
	}
	s.user = user
	if err := s.storage.Save(user); err != nil {
		s.log.Error("persist session", zap.Error(err))
	}
}

// Logout drops the identity, disables build mode and clears the slot.
func (s *Session) Logout() {
	s.user = nil
	s.buildMode = false
	s.state = StateAnonymous
	if err := s.storage.Clear(); err != nil {
		s.log.Error("clear session slot", zap.Error(err))
	}
}
