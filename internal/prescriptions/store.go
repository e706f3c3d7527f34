package prescriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediplus/clinic-platform/internal/appointments"
)

// Store owns the prescription and medicine rows.
type Store struct {
	db appointments.Querier
}

// NewStore creates a prescription store backed by a pgx pool (or mock).
func NewStore(db appointments.Querier) *Store {
	if db == nil {
		panic("prescriptions: db required")
	}
	return &Store{db: db}
}

// insert writes the prescription header and its medicines on the caller's
// transaction. A unique-index conflict on appointment_id surfaces as
// ErrAlreadyPrescribed.
func (s *Store) insert(ctx context.Context, q appointments.Querier, p *Prescription) error {
	_, err := q.Exec(ctx, `
		INSERT INTO prescriptions (id, appointment_id, doctor_id, patient_id, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.AppointmentID, p.DoctorID, p.PatientID, p.Notes, p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyPrescribed
	}
	if err != nil {
		return fmt.Errorf("prescriptions: insert header: %w", err)
	}

	for i, m := range p.Medicines {
		_, err := q.Exec(ctx, `
			INSERT INTO prescription_medicines (id, prescription_id, position, name, dosage_pattern, times_per_day, duration_days, instructions)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, uuid.New(), p.ID, i+1, m.Name, m.DosagePattern, m.TimesPerDay, m.DurationDays, m.Instructions)
		if err != nil {
			return fmt.Errorf("prescriptions: insert medicine %q: %w", m.Name, err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ListByPatient returns the patient's prescriptions with doctor and
// appointment context, newest first, medicines attached in filing order.
func (s *Store) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientPrescription, error) {
	rows, err := s.db.Query(ctx, `
		SELECT pr.id, pr.appointment_id, pr.doctor_id, pr.patient_id, pr.notes, pr.created_at,
		       d.full_name, d.specialty, a.appointment_date
		FROM prescriptions pr
		JOIN doctors d ON pr.doctor_id = d.id
		JOIN appointments a ON pr.appointment_id = a.id
		WHERE pr.patient_id = $1
		ORDER BY pr.created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: list by patient: %w", err)
	}
	defer rows.Close()

	var out []PatientPrescription
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var pp PatientPrescription
		if err := rows.Scan(&pp.ID, &pp.AppointmentID, &pp.DoctorID, &pp.PatientID, &pp.Notes, &pp.CreatedAt,
			&pp.DoctorName, &pp.Specialty, &pp.AppointmentDate); err != nil {
			return nil, fmt.Errorf("prescriptions: scan header: %w", err)
		}
		pp.Medicines = []Medicine{}
		index[pp.ID] = len(out)
		out = append(out, pp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prescriptions: list by patient: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]uuid.UUID, 0, len(out))
	for _, pp := range out {
		ids = append(ids, pp.ID)
	}
	medRows, err := s.db.Query(ctx, `
		SELECT prescription_id, name, dosage_pattern, times_per_day, duration_days, instructions
		FROM prescription_medicines
		WHERE prescription_id = ANY($1)
		ORDER BY prescription_id, position
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("prescriptions: list medicines: %w", err)
	}
	defer medRows.Close()

	for medRows.Next() {
		var prescriptionID uuid.UUID
		var m Medicine
		if err := medRows.Scan(&prescriptionID, &m.Name, &m.DosagePattern, &m.TimesPerDay, &m.DurationDays, &m.Instructions); err != nil {
			return nil, fmt.Errorf("prescriptions: scan medicine: %w", err)
		}
		if i, ok := index[prescriptionID]; ok {
			out[i].Medicines = append(out[i].Medicines, m)
		}
	}
	if err := medRows.Err(); err != nil {
		return nil, fmt.Errorf("prescriptions: list medicines: %w", err)
	}
	return out, nil
}
