package patients

import "errors"

var (
	// ErrUsernameTaken means the requested username already exists.
	ErrUsernameTaken = errors.New("patients: username already taken")

	// ErrInvalidCredentials covers both unknown username and wrong
	// password; callers must not distinguish the two.
	ErrInvalidCredentials = errors.New("patients: invalid credentials")

	// ErrNotFound means no patient exists with the given ID.
	ErrNotFound = errors.New("patients: not found")
)
