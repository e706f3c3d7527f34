package matching

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Handler exposes the doctor recommendation endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a matching handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// RecommendRequest is the symptom description body.
type RecommendRequest struct {
	Symptoms string `json:"symptoms"`
}

// Recommend handles POST /api/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Symptoms) == "" {
		http.Error(w, "symptoms description is required", http.StatusBadRequest)
		return
	}

	rec, err := h.service.Recommend(r.Context(), req.Symptoms)
	switch {
	case errors.Is(err, ErrNoDoctors):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		h.logger.Error("recommendation failed", "error", err)
		http.Error(w, "recommendation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rec)
}
