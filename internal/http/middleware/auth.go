package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/auth"
)

type contextKey string

const (
	patientIDKey contextKey = "patientID"
	doctorIDKey  contextKey = "doctorID"
)

// PatientJWT requires a bearer token carrying a patient identity and
// injects the patient ID into the request context.
func PatientJWT(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(issuer, w, r)
			if !ok {
				return
			}
			patientID, err := uuid.Parse(claims.PatientID)
			if err != nil {
				http.Error(w, "patient access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPatientID(r.Context(), patientID)))
		})
	}
}

// DoctorJWT requires a bearer token carrying a doctor identity and injects
// the doctor ID into the request context.
func DoctorJWT(issuer *auth.Issuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := parseBearer(issuer, w, r)
			if !ok {
				return
			}
			doctorID, err := uuid.Parse(claims.DoctorID)
			if err != nil {
				http.Error(w, "doctor access required", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithDoctorID(r.Context(), doctorID)))
		})
	}
}

func parseBearer(issuer *auth.Issuer, w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	if issuer == nil {
		http.Error(w, "authentication disabled", http.StatusUnauthorized)
		return nil, false
	}
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		http.Error(w, "access token required", http.StatusUnauthorized)
		return nil, false
	}
	claims, err := issuer.Parse(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		http.Error(w, "invalid or expired token", http.StatusForbidden)
		return nil, false
	}
	return claims, true
}

// WithPatientID stores an authenticated patient ID on the context.
func WithPatientID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, patientIDKey, id)
}

// WithDoctorID stores an authenticated doctor ID on the context.
func WithDoctorID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, doctorIDKey, id)
}

// PatientIDFromContext returns the authenticated patient ID if present.
func PatientIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(patientIDKey).(uuid.UUID)
	return id, ok
}

// DoctorIDFromContext returns the authenticated doctor ID if present.
func DoctorIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(doctorIDKey).(uuid.UUID)
	return id, ok
}
