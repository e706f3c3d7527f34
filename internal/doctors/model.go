package doctors

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Doctor is a doctor profile as served to patients. PasswordHash never
// leaves the package.
type Doctor struct {
	ID           uuid.UUID `json:"doctor_id"`
	Username     string    `json:"-"`
	FullName     string    `json:"full_name"`
	Sector       string    `json:"sector"`
	HospitalName string    `json:"hospital_name,omitempty"`
	Specialty    string    `json:"specialty"`
	Keywords     []string  `json:"keywords,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// MatchText is the text the directory embeds for this doctor: specialty,
// sector and keywords joined into one description.
func (d Doctor) MatchText() string {
	parts := []string{d.Specialty, d.Sector}
	parts = append(parts, d.Keywords...)
	filtered := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, ", ")
}
