package doctors

import "errors"

var (
	// ErrNotFound means no doctor exists with the given ID or username.
	ErrNotFound = errors.New("doctors: not found")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password on doctor login.
	ErrInvalidCredentials = errors.New("doctors: invalid credentials")
)
