package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	httpmiddleware "github.com/mediplus/clinic-platform/internal/http/middleware"
	"github.com/mediplus/clinic-platform/internal/schedule"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Handler exposes the booking, cancellation and queue-view endpoints.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// BookRequest is the booking request body. doctorId is accepted as an
// alias for doctor_id.
type BookRequest struct {
	DoctorID      string `json:"doctor_id"`
	DoctorIDAlias string `json:"doctorId"`
	Day           string `json:"day"`
}

// Book handles POST /api/appointments/book.
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	patientID, ok := httpmiddleware.PatientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "patient access required", http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	rawDoctorID := req.DoctorID
	if rawDoctorID == "" {
		rawDoctorID = req.DoctorIDAlias
	}
	if rawDoctorID == "" || req.Day == "" {
		http.Error(w, "doctor_id and day are required", http.StatusBadRequest)
		return
	}
	doctorID, err := uuid.Parse(rawDoctorID)
	if err != nil {
		http.Error(w, "invalid doctor_id", http.StatusBadRequest)
		return
	}
	day, err := schedule.ParseWeekday(req.Day)
	if err != nil {
		http.Error(w, "invalid day", http.StatusBadRequest)
		return
	}

	apt, err := h.service.Book(r.Context(), patientID, doctorID, day)
	if err != nil {
		h.writeBookingError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, apt)
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDoctorUnavailable),
		errors.Is(err, ErrCapacityExceeded),
		errors.Is(err, ErrDuplicateBooking),
		errors.Is(err, ErrSerialsExhausted):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("booking failed", "error", err)
		http.Error(w, "booking failed", http.StatusInternalServerError)
	}
}

// Cancel handles PATCH /api/appointments/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	patientID, ok := httpmiddleware.PatientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "patient access required", http.StatusUnauthorized)
		return
	}
	appointmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return
	}

	err = h.service.Cancel(r.Context(), appointmentID, patientID)
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrTooLateToCancel):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		h.logger.Error("cancellation failed", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
	default:
		respondJSON(w, http.StatusOK, map[string]string{"message": "appointment cancelled successfully"})
	}
}

// My handles GET /api/appointments/my.
func (h *Handler) My(w http.ResponseWriter, r *http.Request) {
	patientID, ok := httpmiddleware.PatientIDFromContext(r.Context())
	if !ok {
		http.Error(w, "patient access required", http.StatusUnauthorized)
		return
	}
	list, err := h.service.PatientQueue(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err, "patient_id", patientID)
		http.Error(w, "failed to fetch appointments", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []PatientAppointment{}
	}
	respondJSON(w, http.StatusOK, list)
}

// DoctorQueues handles GET /api/doctor/appointments.
func (h *Handler) DoctorQueues(w http.ResponseWriter, r *http.Request) {
	doctorID, ok := httpmiddleware.DoctorIDFromContext(r.Context())
	if !ok {
		http.Error(w, "doctor access required", http.StatusUnauthorized)
		return
	}
	queues, err := h.service.DoctorDayQueues(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to build day queues", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to fetch appointments", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, queues)
}

// Availability handles GET /api/doctors/{id}/availability.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid doctor id", http.StatusBadRequest)
		return
	}
	availability, err := h.service.Availability(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to compute availability", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to fetch availability", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, availability)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
