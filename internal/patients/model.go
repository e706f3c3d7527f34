package patients

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a registered patient account. PasswordHash never leaves the
// package.
type Patient struct {
	ID           uuid.UUID `json:"patient_id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
