package app

import "strings"

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ValidationError is a client-side rejection raised before any remote call
// is issued, meant for inline display in the originating form.
type ValidationError string

func (e ValidationError) Error() string { return string(e) }

const (
	errEmptyCredentials = ValidationError("name and password must not be empty")
	errEmptyTitle       = ValidationError("title must not be empty")
	errEmptyName        = ValidationError("name must not be empty")
	errEmptyPassword    = ValidationError("both password fields must be filled in")
	errPasswordMismatch = ValidationError("passwords do not match")
	errPasswordTooShort = ValidationError("password must be at least 6 characters")
	errNoBoardSelected  = ValidationError("no board selected")
	errUnknownColumn    = ValidationError("unknown column")
	errUnknownCard      = ValidationError("unknown card")
)
