package patients

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mediplus/clinic-platform/internal/notify"
)

// DB is the query surface the store needs; satisfied by *pgxpool.Pool
// and pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store owns the patients table.
type Store struct {
	db DB
}

// NewStore creates a patient store backed by a pgx pool (or mock).
func NewStore(db DB) *Store {
	if db == nil {
		panic("patients: db required")
	}
	return &Store{db: db}
}

// Create inserts a new patient. A username conflict surfaces as
// ErrUsernameTaken.
func (s *Store) Create(ctx context.Context, p *Patient) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO patients (id, username, full_name, email, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.Username, p.FullName, p.Email, p.Phone, p.PasswordHash, p.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("patients: create: %w", err)
	}
	return nil
}

// GetByUsername loads a patient by username, hash included, for login.
func (s *Store) GetByUsername(ctx context.Context, username string) (*Patient, error) {
	var p Patient
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, email, phone, password_hash, created_at
		FROM patients
		WHERE username = $1
	`, username).Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get by username: %w", err)
	}
	return &p, nil
}

// Get loads a patient by ID.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := s.db.QueryRow(ctx, `
		SELECT id, username, full_name, email, phone, password_hash, created_at
		FROM patients
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Username, &p.FullName, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get: %w", err)
	}
	return &p, nil
}

// Contact resolves a patient to their notification address. Implements
// notify.ContactDirectory.
func (s *Store) Contact(ctx context.Context, patientID uuid.UUID) (*notify.Contact, error) {
	p, err := s.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return &notify.Contact{Name: p.FullName, Email: p.Email}, nil
}

var _ notify.ContactDirectory = (*Store)(nil)
