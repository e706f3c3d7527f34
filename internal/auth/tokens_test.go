package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPatientTokenRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	patientID := uuid.New()
	token, err := issuer.PatientToken(patientID, "jdoe")
	if err != nil {
		t.Fatalf("PatientToken: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.PatientID != patientID.String() {
		t.Errorf("patient_id = %q, want %q", claims.PatientID, patientID)
	}
	if claims.DoctorID != "" {
		t.Errorf("doctor_id should be empty, got %q", claims.DoctorID)
	}
	if claims.Username != "jdoe" {
		t.Errorf("username = %q", claims.Username)
	}
}

func TestDoctorTokenRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	doctorID := uuid.New()
	token, err := issuer.DoctorToken(doctorID, "drwho")
	if err != nil {
		t.Fatalf("DoctorToken: %v", err)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.DoctorID != doctorID.String() {
		t.Errorf("doctor_id = %q, want %q", claims.DoctorID, doctorID)
	}
	if claims.PatientID != "" {
		t.Errorf("patient_id should be empty, got %q", claims.PatientID)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer, _ := NewIssuer("secret-a", time.Hour)
	other, _ := NewIssuer("secret-b", time.Hour)

	token, err := issuer.PatientToken(uuid.New(), "jdoe")
	if err != nil {
		t.Fatalf("PatientToken: %v", err)
	}
	if _, err := other.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	issuer, _ := NewIssuer("test-secret", time.Nanosecond)
	token, err := issuer.PatientToken(uuid.New(), "jdoe")
	if err != nil {
		t.Fatalf("PatientToken: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
