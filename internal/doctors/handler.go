package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mediplus/clinic-platform/internal/auth"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Handler exposes the doctor listing and doctor login endpoints.
type Handler struct {
	store  *Store
	issuer *auth.Issuer
	logger *logging.Logger
}

// NewHandler creates a doctors handler.
func NewHandler(store *Store, issuer *auth.Issuer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, issuer: issuer, logger: logger}
}

// List handles GET /api/doctors.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to fetch doctors", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []Doctor{}
	}
	respondJSON(w, http.StatusOK, list)
}

// LoginRequest is the doctor credential body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued token and the doctor profile.
type LoginResponse struct {
	Token  string  `json:"token"`
	Doctor *Doctor `json:"doctor"`
}

// Login handles POST /api/auth/doctor/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	d, err := Login(r.Context(), h.store, req.Username, req.Password)
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Error("doctor login failed", "error", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	token, err := h.issuer.DoctorToken(d.ID, d.Username)
	if err != nil {
		h.logger.Error("token issue failed", "error", err, "doctor_id", d.ID)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Token: token, Doctor: d})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
