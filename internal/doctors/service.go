package doctors

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Credentials is the login surface of the store.
type Credentials interface {
	GetByUsername(ctx context.Context, username string) (*Doctor, error)
}

// Login verifies doctor credentials against the store. Unknown username
// and wrong password both return ErrInvalidCredentials.
func Login(ctx context.Context, store Credentials, username, password string) (*Doctor, error) {
	d, err := store.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(d.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return d, nil
}
