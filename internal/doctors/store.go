package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface the store needs; satisfied by *pgxpool.Pool
// and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the doctors and doctor_keywords tables.
type Store struct {
	db DB
}

// NewStore creates a doctor store backed by a pgx pool (or mock).
func NewStore(db DB) *Store {
	if db == nil {
		panic("doctors: db required")
	}
	return &Store{db: db}
}

// List returns every doctor profile with keywords attached.
func (s *Store) List(ctx context.Context) ([]Doctor, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, username, full_name, sector, hospital_name, specialty, created_at
		FROM doctors
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Username, &d.FullName, &d.Sector, &d.HospitalName, &d.Specialty, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("doctors: scan: %w", err)
		}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list: %w", err)
	}
	if len(out) == 0 {
		return out, nil
	}

	kwRows, err := s.db.Query(ctx, `
		SELECT doctor_id, keyword FROM doctor_keywords ORDER BY doctor_id, keyword
	`)
	if err != nil {
		return nil, fmt.Errorf("doctors: list keywords: %w", err)
	}
	defer kwRows.Close()
	for kwRows.Next() {
		var doctorID uuid.UUID
		var keyword string
		if err := kwRows.Scan(&doctorID, &keyword); err != nil {
			return nil, fmt.Errorf("doctors: scan keyword: %w", err)
		}
		if i, ok := index[doctorID]; ok {
			out[i].Keywords = append(out[i].Keywords, keyword)
		}
	}
	if err := kwRows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: list keywords: %w", err)
	}
	return out, nil
}

// Get loads one doctor profile by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	var d Doctor
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, sector, hospital_name, specialty, created_at
		FROM doctors
		WHERE id = $1
	`, id).Scan(&d.ID, &d.Username, &d.FullName, &d.Sector, &d.HospitalName, &d.Specialty, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get: %w", err)
	}
	return &d, nil
}

// GetByUsername loads a doctor by username, hash included, for login.
func (s *Store) GetByUsername(ctx context.Context, username string) (*Doctor, error) {
	var d Doctor
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, sector, hospital_name, specialty, password_hash, created_at
		FROM doctors
		WHERE username = $1
	`, username).Scan(&d.ID, &d.Username, &d.FullName, &d.Sector, &d.HospitalName, &d.Specialty, &d.PasswordHash, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: get by username: %w", err)
	}
	return &d, nil
}
