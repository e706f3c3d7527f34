package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/auth"
)

func newTestIssuer(t *testing.T) *auth.Issuer {
	t.Helper()
	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return issuer
}

func TestPatientJWTInjectsPatientID(t *testing.T) {
	issuer := newTestIssuer(t)
	patientID := uuid.New()
	token, err := issuer.PatientToken(patientID, "jdoe")
	if err != nil {
		t.Fatalf("PatientToken: %v", err)
	}

	var got uuid.UUID
	handler := PatientJWT(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = PatientIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got != patientID {
		t.Fatalf("patient id = %s, want %s", got, patientID)
	}
}

func TestPatientJWTRejectsDoctorToken(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.DoctorToken(uuid.New(), "drwho")
	if err != nil {
		t.Fatalf("DoctorToken: %v", err)
	}

	handler := PatientJWT(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/appointments/my", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestDoctorJWTRequiresToken(t *testing.T) {
	issuer := newTestIssuer(t)
	handler := DoctorJWT(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/doctor/appointments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestDoctorJWTRejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(t)
	handler := DoctorJWT(issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/doctor/appointments", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}
