package prescriptions

import (
	"time"

	"github.com/google/uuid"
)

// Medicine is one line of a prescription. DosagePattern is the
// morning+noon+night notation ("1+0+1"); when omitted it is derived from
// TimesPerDay.
type Medicine struct {
	Name          string `json:"name"`
	DosagePattern string `json:"dosage_pattern"`
	TimesPerDay   int    `json:"times_per_day"`
	DurationDays  int    `json:"duration_days"`
	Instructions  string `json:"instructions,omitempty"`
}

// Prescription is the record filed when a doctor completes an
// appointment. One per appointment.
type Prescription struct {
	ID            uuid.UUID  `json:"prescription_id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	DoctorID      uuid.UUID  `json:"doctor_id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	Notes         string     `json:"notes,omitempty"`
	Medicines     []Medicine `json:"medicines"`
	CreatedAt     time.Time  `json:"created_at"`
}

// PatientPrescription is a prescription enriched for the patient-facing
// history view.
type PatientPrescription struct {
	Prescription
	DoctorName      string    `json:"doctor_name"`
	Specialty       string    `json:"specialty,omitempty"`
	AppointmentDate time.Time `json:"appointment_date"`
}

// dosagePattern returns the medicine's pattern, deriving it from
// TimesPerDay when the client sent none.
func (m Medicine) dosagePattern() string {
	if m.DosagePattern != "" {
		return m.DosagePattern
	}
	switch m.TimesPerDay {
	case 2:
		return "1+0+1"
	case 3:
		return "1+1+1"
	default:
		return "1+0+0"
	}
}

func (m Medicine) validate() error {
	if m.Name == "" {
		return errInvalid("medicine name is required")
	}
	if m.TimesPerDay < 1 {
		return errInvalid("times_per_day must be at least 1")
	}
	if m.DurationDays < 1 {
		return errInvalid("duration_days must be at least 1")
	}
	return nil
}

func validateMedicines(meds []Medicine) error {
	if len(meds) == 0 {
		return errInvalid("at least one medicine is required")
	}
	for _, m := range meds {
		if err := m.validate(); err != nil {
			return err
		}
	}
	return nil
}
