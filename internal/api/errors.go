package api

import "errors"

// Login rejections the UI tells apart.
var (
	// ErrBadCredentials is returned when name or password is wrong.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrNotActivated is returned when the account exists but has not been
	// activated by an admin yet.
	ErrNotActivated = errors.New("account not activated")
)
