package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mediplus/clinic-platform/internal/auth"
	httpmiddleware "github.com/mediplus/clinic-platform/internal/http/middleware"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Handler exposes patient registration, login and profile endpoints.
type Handler struct {
	service *Service
	issuer  *auth.Issuer
	logger  *logging.Logger
}

// NewHandler creates a patients handler.
func NewHandler(service *Service, issuer *auth.Issuer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, issuer: issuer, logger: logger}
}

// RegisterRequest is the patient sign-up body.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// LoginRequest is the credential body shared by login endpoints.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries the issued token and the authenticated profile.
type AuthResponse struct {
	Token   string   `json:"token"`
	Patient *Patient `json:"patient"`
}

// Register handles POST /api/auth/patient/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" || req.FullName == "" {
		http.Error(w, "username, password and full_name are required", http.StatusBadRequest)
		return
	}

	p, err := h.service.Register(r.Context(), req.Username, req.Password, req.FullName, req.Email, req.Phone)
	switch {
	case errors.Is(err, ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error("patient registration failed", "error", err)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}

	token, err := h.issuer.PatientToken(p.ID, p.Username)
	if err != nil {
		h.logger.Error("token issue failed", "error", err, "patient_id", p.ID)
		http.Error(w, "registration failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, AuthResponse{Token: token, Patient: p})
}

// Login handles POST /api/auth/patient/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Login(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Error("patient login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	token, err := h.issuer.PatientToken(p.ID, p.Username)
	if err != nil {
		h.logger.Error("token issue failed", "error", err, "patient_id", p.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, AuthResponse{Token: token, Patient: p})
}

// Me handles GET /api/patients/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	patientID, ok := httpmiddleware.PatientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "patient access required", http.StatusUnauthorized)
		return
	}
	p, err := h.service.Get(r.Context(), patientID)
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "patient not found", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("profile lookup failed", "error", err, "patient_id", patientID)
		http.Error(w, "failed to fetch profile", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
