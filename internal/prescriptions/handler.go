package prescriptions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/appointments"
	httpmiddleware "github.com/mediplus/clinic-platform/internal/http/middleware"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Handler exposes the completion/prescription endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a prescriptions handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CompleteRequest is the body for completing an appointment with a
// prescription.
type CompleteRequest struct {
	Medicines []Medicine `json:"medicines"`
	Notes     string     `json:"notes"`
}

// Complete handles POST /api/doctor/appointments/{id}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := httpmiddleware.DoctorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "doctor access required", http.StatusUnauthorized)
		return
	}
	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.service.Complete(r.Context(), appointmentID, doctorID, req.Medicines, req.Notes)
	switch {
	case errors.Is(err, appointments.ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrWrongDay),
		errors.Is(err, ErrAlreadyPrescribed),
		errors.Is(err, ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.logger.Error("completion failed", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to complete appointment", http.StatusInternalServerError)
	default:
		respondJSON(w, http.StatusCreated, p)
	}
}

// My handles GET /api/prescriptions/my.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	patientID, ok := httpmiddleware.PatientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "patient access required", http.StatusUnauthorized)
		return
	}
	list, err := h.service.ListForPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list prescriptions", "error", err, "patient_id", patientID)
		http.Error(w, "failed to fetch prescriptions", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []PatientPrescription{}
	}
	respondJSON(w, http.StatusOK, list)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
