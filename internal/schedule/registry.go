package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a doctor has no schedule entry for the
// requested weekday, i.e. the doctor does not operate on that day.
var ErrNotFound = errors.New("schedule: no entry for doctor on this weekday")

// Entry is one row of a doctor's recurring weekly schedule.
type Entry struct {
	DoctorID      uuid.UUID `json:"doctor_id"`
	Weekday       Weekday   `json:"day"`
	MaxPatients   int       `json:"max_patients"`
	StartMinutes  int       `json:"start_minutes"`
	AvgPerPatient int       `json:"avg_minutes_per_patient"`
}

// StartClock renders the consultation start as "HH:MM".
func (e Entry) StartClock() string {
	return FormatClock(e.StartMinutes)
}

// DB is the subset of pgxpool.Pool the registry reads through. The
// allocation engine never writes schedule rows; they are managed by the
// doctor-administration surface.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Registry reads per-doctor, per-weekday capacity and pacing configuration.
type Registry struct {
	db DB
}

// NewRegistry creates a registry backed by a pgx pool (or mock).
func NewRegistry(db DB) *Registry {
	if db == nil {
		panic("schedule: db required")
	}
	return &Registry{db: db}
}

// Get fetches the schedule entry for one (doctor, weekday). ErrNotFound
// means the doctor is unavailable that day and must reject a booking, not
// fall back to a default capacity.
func (r *Registry) Get(ctx context.Context, doctorID uuid.UUID, day Weekday) (*Entry, error) {
	const query = `
		SELECT doctor_id, weekday, max_patients, start_minutes, avg_minutes_per_patient
		FROM doctor_schedules
		WHERE doctor_id = $1 AND weekday = $2
	`
	var e Entry
	err := r.db.QueryRow(ctx, query, doctorID, string(day)).
		Scan(&e.DoctorID, &e.Weekday, &e.MaxPatients, &e.StartMinutes, &e.AvgPerPatient)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("schedule: get entry: %w", err)
	}
	return &e, nil
}

// ListForDoctor returns every weekday the doctor operates, Monday-first.
func (r *Registry) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]Entry, error) {
	const query = `
		SELECT doctor_id, weekday, max_patients, start_minutes, avg_minutes_per_patient
		FROM doctor_schedules
		WHERE doctor_id = $1
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list for doctor: %w", err)
	}
	defer rows.Close()

	byDay := make(map[Weekday]Entry)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DoctorID, &e.Weekday, &e.MaxPatients, &e.StartMinutes, &e.AvgPerPatient); err != nil {
			return nil, fmt.Errorf("schedule: scan entry: %w", err)
		}
		byDay[e.Weekday] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: list for doctor: %w", err)
	}

	entries := make([]Entry, 0, len(byDay))
	for _, day := range OrderedWeekdays() {
		if e, ok := byDay[day]; ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
