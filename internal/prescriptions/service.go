package prescriptions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mediplus/clinic-platform/internal/appointments"
	"github.com/mediplus/clinic-platform/internal/observability/metrics"
	"github.com/mediplus/clinic-platform/internal/schedule"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("mediplus.internal.prescriptions")

// Ledger is the slice of the appointment store the prescription flow
// drives: its transactions, the Booked-row lookup and the completion
// transition. *appointments.Store implements it.
type Ledger interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	GetBookedForDoctor(ctx context.Context, q appointments.Querier, appointmentID, doctorID uuid.UUID) (*appointments.Appointment, error)
	MarkCompleted(ctx context.Context, q appointments.Querier, appointmentID uuid.UUID) error
}

// Filer writes prescription rows on a caller-supplied transaction and
// serves the patient history view.
type Filer interface {
	insert(ctx context.Context, q appointments.Querier, p *Prescription) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientPrescription, error)
}

// Service files prescriptions and completes appointments atomically.
type Service struct {
	appointments Ledger
	store        Filer
	metrics      *metrics.BookingMetrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewService constructs the prescriptions service. m may be nil.
func NewService(ledger Ledger, store Filer, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if ledger == nil {
		panic("prescriptions: appointment ledger required")
	}
	if store == nil {
		panic("prescriptions: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		appointments: ledger,
		store:        store,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Complete files a prescription for a booked appointment owned by the
// doctor and marks it Completed, in one transaction. Only allowed on the
// appointment's weekday: a consultation is prescribed the day it happens.
func (s *Service) Complete(ctx context.Context, appointmentID, doctorID uuid.UUID, meds []Medicine, notes string) (*Prescription, error) {
	ctx, span := tracer.Start(ctx, "prescriptions.complete")
	defer span.End()
	span.SetAttributes(attribute.String("mediplus.appointment_id", appointmentID.String()))

	if err := validateMedicines(meds); err != nil {
		return nil, err
	}

	tx, err := s.appointments.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	apt, err := s.appointments.GetBookedForDoctor(ctx, tx, appointmentID, doctorID)
	if err != nil {
		return nil, err
	}
	if apt.Weekday != schedule.FromTime(s.now().Weekday()) {
		return nil, ErrWrongDay
	}

	p := &Prescription{
		ID:            uuid.New(),
		AppointmentID: apt.ID,
		DoctorID:      doctorID,
		PatientID:     apt.PatientID,
		Notes:         notes,
		Medicines:     make([]Medicine, len(meds)),
		CreatedAt:     s.now(),
	}
	for i, m := range meds {
		m.DosagePattern = m.dosagePattern()
		p.Medicines[i] = m
	}

	if err := s.store.insert(ctx, tx, p); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.appointments.MarkCompleted(ctx, tx, apt.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.metrics.ObservePrescription("filed")
	s.logger.Info("prescription filed",
		"prescription_id", p.ID,
		"appointment_id", apt.ID,
		"doctor_id", doctorID,
		"medicines", len(p.Medicines),
	)
	return p, nil
}

// ListForPatient returns the patient's prescription history.
func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]PatientPrescription, error) {
	return s.store.ListByPatient(ctx, patientID)
}
