package patients

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

type memoryStore struct {
	byUsername map[string]*Patient
	byID       map[uuid.UUID]*Patient
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		byUsername: make(map[string]*Patient),
		byID:       make(map[uuid.UUID]*Patient),
	}
}

func (m *memoryStore) Create(_ context.Context, p *Patient) error {
	if _, exists := m.byUsername[p.Username]; exists {
		return ErrUsernameTaken
	}
	m.byUsername[p.Username] = p
	m.byID[p.ID] = p
	return nil
}

func (m *memoryStore) GetByUsername(_ context.Context, username string) (*Patient, error) {
	p, ok := m.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *memoryStore) Get(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func TestRegisterHashesPassword(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, logging.New("error"))

	p, err := svc.Register(context.Background(), "ayesha", "s3cret", "Ayesha Khan", "ayesha@example.com", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.PasswordHash == "s3cret" || p.PasswordHash == "" {
		t.Fatal("password stored without hashing")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte("s3cret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, logging.New("error"))
	ctx := context.Background()

	if _, err := svc.Register(ctx, "ayesha", "s3cret", "Ayesha Khan", "", ""); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, "ayesha", "other", "Another Ayesha", "", "")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}
}

func TestLogin(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, logging.New("error"))
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ayesha", "s3cret", "Ayesha Khan", "", "")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	p, err := svc.Login(ctx, "ayesha", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if p.ID != registered.ID {
		t.Fatalf("logged in as %s, want %s", p.ID, registered.ID)
	}

	if _, err := svc.Login(ctx, "ayesha", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}
