package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mediplus/clinic-platform/internal/appointments"
	"github.com/mediplus/clinic-platform/internal/auth"
	"github.com/mediplus/clinic-platform/internal/doctors"
	httpmiddleware "github.com/mediplus/clinic-platform/internal/http/middleware"
	"github.com/mediplus/clinic-platform/internal/matching"
	"github.com/mediplus/clinic-platform/internal/patients"
	"github.com/mediplus/clinic-platform/internal/prescriptions"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// authRatePerSecond throttles credential endpoints per IP.
const (
	authRatePerSecond = 2.0
	authRateBurst     = 5
)

// Config holds router configuration
type Config struct {
	Logger               *logging.Logger
	Issuer               *auth.Issuer
	PatientsHandler      *patients.Handler
	DoctorsHandler       *doctors.Handler
	AppointmentsHandler  *appointments.Handler
	PrescriptionsHandler *prescriptions.Handler
	MatchingHandler      *matching.Handler
	MetricsHandler       http.Handler
	CORSAllowedOrigins   []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		public.Route("/api/auth", func(r chi.Router) {
			r.Use(httpmiddleware.RateLimit(authRatePerSecond, authRateBurst))
			if cfg.PatientsHandler != nil {
				r.Post("/patient/register", cfg.PatientsHandler.Register)
				r.Post("/patient/login", cfg.PatientsHandler.Login)
			}
			if cfg.DoctorsHandler != nil {
				r.Post("/doctor/login", cfg.DoctorsHandler.Login)
			}
		})

		if cfg.DoctorsHandler != nil {
			public.Get("/api/doctors", cfg.DoctorsHandler.List)
		}
		if cfg.AppointmentsHandler != nil {
			public.Get("/api/doctors/{id}/availability", cfg.AppointmentsHandler.Availability)
		}
		if cfg.MatchingHandler != nil {
			public.Post("/api/recommend", cfg.MatchingHandler.Recommend)
		}
	})

	// Patient endpoints
	r.Group(func(patient chi.Router) {
		patient.Use(httpmiddleware.PatientJWT(cfg.Issuer))
		if cfg.PatientsHandler != nil {
			patient.Get("/api/patients/me", cfg.PatientsHandler.Me)
		}
		if cfg.AppointmentsHandler != nil {
			patient.Post("/api/appointments/book", cfg.AppointmentsHandler.Book)
			patient.Patch("/api/appointments/{id}/cancel", cfg.AppointmentsHandler.Cancel)
			patient.Get("/api/appointments/my", cfg.AppointmentsHandler.My)
		}
		if cfg.PrescriptionsHandler != nil {
			patient.Get("/api/prescriptions/my", cfg.PrescriptionsHandler.My)
		}
	})

	// Doctor endpoints
	r.Group(func(doctor chi.Router) {
		doctor.Use(httpmiddleware.DoctorJWT(cfg.Issuer))
		if cfg.AppointmentsHandler != nil {
			doctor.Get("/api/doctor/appointments", cfg.AppointmentsHandler.DoctorQueues)
		}
		if cfg.PrescriptionsHandler != nil {
			doctor.Post("/api/doctor/appointments/{id}/complete", cfg.PrescriptionsHandler.Complete)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
