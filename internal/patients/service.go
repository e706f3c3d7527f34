package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Accounts is the persistence surface the service drives. *Store
// implements it.
type Accounts interface {
	Create(ctx context.Context, p *Patient) error
	GetByUsername(ctx context.Context, username string) (*Patient, error)
	Get(ctx context.Context, id uuid.UUID) (*Patient, error)
}

// Service handles patient registration and credential checks.
type Service struct {
	store  Accounts
	logger *logging.Logger
	now    func() time.Time
}

// NewService constructs the patients service.
func NewService(store Accounts, logger *logging.Logger) *Service {
	if store == nil {
		panic("patients: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, logger: logger, now: time.Now}
}

// Register creates a patient account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, username, password, fullName, email, phone string) (*Patient, error) {
	if username == "" || password == "" || fullName == "" {
		return nil, errors.New("patients: username, password and full name are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("patients: hash password: %w", err)
	}
	p := &Patient{
		ID:           uuid.New(),
		Username:     username,
		FullName:     fullName,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("patient registered", "patient_id", p.ID, "username", username)
	return p, nil
}

// Login verifies credentials and returns the patient on success. Unknown
// username and wrong password both return ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (*Patient, error) {
	p, err := s.store.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return p, nil
}

// Get loads a patient profile by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.store.Get(ctx, id)
}
