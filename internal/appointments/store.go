package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediplus/clinic-platform/internal/schedule"
)

// Querier is the query surface shared by the pool and a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DB is the pool surface the ledger needs: queries plus transactions.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Querier
}

// Store is the appointment ledger: the sole owner of appointment rows.
type Store struct {
	db DB
}

// NewStore creates a ledger backed by a pgx pool (or mock).
func NewStore(db DB) *Store {
	if db == nil {
		panic("appointments: db required")
	}
	return &Store{db: db}
}

// Begin opens a transaction on the underlying pool. Collaborators that
// must mutate the ledger atomically with their own writes (prescription
// filing) run inside it and pass it back as a Querier.
func (s *Store) Begin(ctx context.Context) (pgx.Tx, error) {
	return s.db.Begin(ctx)
}

// bookAttempts bounds the retry loop around serialization conflicts on
// concurrent bookings for the same (doctor, weekday).
const bookAttempts = 3

// Book atomically claims the lowest free serial for (doctor, weekday) and
// inserts the appointment. The capacity check, duplicate check, serial
// scan and insert run in one transaction serialized per (doctor, weekday)
// by an advisory lock; the partial unique index on live serials backstops
// the claim, and a conflicting concurrent insert is retried.
func (s *Store) Book(ctx context.Context, patientID, doctorID uuid.UUID, day schedule.Weekday, maxPatients int, date time.Time) (*Appointment, error) {
	var (
		apt *Appointment
		err error
	)
	for attempt := 0; attempt < bookAttempts; attempt++ {
		apt, err = s.tryBook(ctx, patientID, doctorID, day, maxPatients, date)
		if err == nil || !retryableBookError(err) {
			return apt, err
		}
	}
	return nil, fmt.Errorf("appointments: book retries exhausted: %w", err)
}

func (s *Store) tryBook(ctx context.Context, patientID, doctorID uuid.UUID, day schedule.Weekday, maxPatients int, date time.Time) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Held until commit or rollback; serializes the read-check-write
	// sequence per (doctor, weekday).
	lockKey := doctorID.String() + ":" + string(day)
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return nil, fmt.Errorf("appointments: acquire booking lock: %w", err)
	}

	var activeCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND weekday = $2 AND status <> 'Cancelled'
	`, doctorID, string(day)).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("appointments: count active: %w", err)
	}
	if activeCount >= maxPatients {
		return nil, ErrCapacityExceeded
	}

	var duplicates int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE patient_id = $1 AND doctor_id = $2 AND weekday = $3 AND status = 'Booked'
	`, patientID, doctorID, string(day)).Scan(&duplicates)
	if err != nil {
		return nil, fmt.Errorf("appointments: check duplicate: %w", err)
	}
	if duplicates > 0 {
		return nil, ErrDuplicateBooking
	}

	rows, err := tx.Query(ctx, `
		SELECT serial_no FROM appointments
		WHERE doctor_id = $1 AND weekday = $2 AND status <> 'Cancelled'
		ORDER BY serial_no
	`, doctorID, string(day))
	if err != nil {
		return nil, fmt.Errorf("appointments: fetch serials: %w", err)
	}
	activeSerials := make(map[int]struct{})
	for rows.Next() {
		var serial int
		if err := rows.Scan(&serial); err != nil {
			rows.Close()
			return nil, fmt.Errorf("appointments: scan serial: %w", err)
		}
		activeSerials[serial] = struct{}{}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: fetch serials: %w", err)
	}

	serial, err := nextSerial(maxPatients, activeSerials)
	if err != nil {
		return nil, err
	}

	apt := &Appointment{
		ID:        uuid.New(),
		PatientID: patientID,
		DoctorID:  doctorID,
		Weekday:   day,
		SerialNo:  serial,
		Date:      date,
		Status:    StatusBooked,
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, weekday, serial_no, appointment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, apt.ID, apt.PatientID, apt.DoctorID, string(apt.Weekday), apt.SerialNo, apt.Date, string(apt.Status))
	if err != nil {
		return nil, fmt.Errorf("appointments: insert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("appointments: commit booking: %w", err)
	}
	return apt, nil
}

// retryableBookError reports whether a failed booking attempt may succeed
// on retry: a serialization failure, or a unique-index conflict from a
// concurrent claim of the same serial.
func retryableBookError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "23505"
	}
	return false
}

// Cancel marks a booked appointment cancelled, subject to the 24-hour
// lockout before its calendar date, and returns the cancelled row. The
// status re-check in the UPDATE makes a lost race report ErrNotFound
// rather than double-cancel.
func (s *Store) Cancel(ctx context.Context, appointmentID, patientID uuid.UUID, now time.Time) (*Appointment, error) {
	var apt Appointment
	var day string
	err := s.db.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, weekday, serial_no, appointment_date
		FROM appointments
		WHERE id = $1 AND patient_id = $2 AND status = 'Booked'
	`, appointmentID, patientID).Scan(&apt.ID, &apt.PatientID, &apt.DoctorID, &day, &apt.SerialNo, &apt.Date)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load for cancel: %w", err)
	}
	apt.Weekday = schedule.Weekday(day)

	if apt.Date.Sub(now).Hours() < 24 {
		return nil, ErrTooLateToCancel
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'Cancelled'
		WHERE id = $1 AND patient_id = $2 AND status = 'Booked'
	`, appointmentID, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: cancel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	apt.Status = StatusCancelled
	return &apt, nil
}

// GetBookedForDoctor loads a booked appointment owned by the doctor.
func (s *Store) GetBookedForDoctor(ctx context.Context, q Querier, appointmentID, doctorID uuid.UUID) (*Appointment, error) {
	if q == nil {
		q = s.db
	}
	var apt Appointment
	var day, status string
	err := q.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, weekday, serial_no, appointment_date, status
		FROM appointments
		WHERE id = $1 AND doctor_id = $2 AND status = 'Booked'
	`, appointmentID, doctorID).Scan(&apt.ID, &apt.PatientID, &apt.DoctorID, &day, &apt.SerialNo, &apt.Date, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load for doctor: %w", err)
	}
	apt.Weekday = schedule.Weekday(day)
	apt.Status = Status(status)
	return &apt, nil
}

// MarkCompleted transitions a booked appointment to Completed. Runs on the
// caller's transaction so the status change and the prescription write
// commit or roll back together.
func (s *Store) MarkCompleted(ctx context.Context, q Querier, appointmentID uuid.UUID) error {
	if q == nil {
		q = s.db
	}
	tag, err := q.Exec(ctx, `
		UPDATE appointments SET status = 'Completed'
		WHERE id = $1 AND status = 'Booked'
	`, appointmentID)
	if err != nil {
		return fmt.Errorf("appointments: mark completed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ActiveCount returns the number of non-cancelled appointments for one
// (doctor, weekday).
func (s *Store) ActiveCount(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND weekday = $2 AND status <> 'Cancelled'
	`, doctorID, string(day)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointments: active count: %w", err)
	}
	return count, nil
}

// CompletedBefore counts completed appointments ahead of the given serial
// on the same doctor, weekday and calendar date. The queue estimator's
// only input besides the schedule.
func (s *Store) CompletedBefore(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday, date time.Time, serialNo int) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND weekday = $2 AND appointment_date = $3
		  AND serial_no < $4 AND status = 'Completed'
	`, doctorID, string(day), date, serialNo).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("appointments: completed before: %w", err)
	}
	return count, nil
}

// ListByPatient returns the patient's appointments with doctor context,
// newest date first. Queue estimates are attached by the service.
func (s *Store) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.weekday, a.serial_no, a.appointment_date, a.status,
		       d.full_name, d.hospital_name, d.specialty
		FROM appointments a
		JOIN doctors d ON a.doctor_id = d.id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	defer rows.Close()

	var out []PatientAppointment
	for rows.Next() {
		var pa PatientAppointment
		var day, status string
		if err := rows.Scan(&pa.ID, &pa.PatientID, &pa.DoctorID, &day, &pa.SerialNo, &pa.Date, &status,
			&pa.DoctorName, &pa.HospitalName, &pa.Specialty); err != nil {
			return nil, fmt.Errorf("appointments: scan patient row: %w", err)
		}
		pa.Weekday = schedule.Weekday(day)
		pa.Status = Status(status)
		out = append(out, pa)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list by patient: %w", err)
	}
	return out, nil
}

// ListByDoctor returns every appointment for the doctor with patient
// names, ordered for the grouped daily queue.
func (s *Store) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]DoctorAppointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT a.id, a.patient_id, a.doctor_id, a.weekday, a.serial_no, a.appointment_date, a.status,
		       p.full_name
		FROM appointments a
		JOIN patients p ON a.patient_id = p.id
		WHERE a.doctor_id = $1
		ORDER BY a.weekday, a.serial_no
	`, doctorID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by doctor: %w", err)
	}
	defer rows.Close()

	var out []DoctorAppointment
	for rows.Next() {
		var da DoctorAppointment
		var day, status string
		if err := rows.Scan(&da.ID, &da.PatientID, &da.DoctorID, &day, &da.SerialNo, &da.Date, &status,
			&da.PatientName); err != nil {
			return nil, fmt.Errorf("appointments: scan doctor row: %w", err)
		}
		da.Weekday = schedule.Weekday(day)
		da.Status = Status(status)
		out = append(out, da)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: list by doctor: %w", err)
	}
	return out, nil
}
