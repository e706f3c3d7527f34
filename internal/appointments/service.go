package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mediplus/clinic-platform/internal/observability/metrics"
	"github.com/mediplus/clinic-platform/internal/schedule"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

var tracer = otel.Tracer("mediplus.internal.appointments")

// Ledger is the persistence surface the service drives. *Store implements
// it; tests substitute a fake.
type Ledger interface {
	Book(ctx context.Context, patientID, doctorID uuid.UUID, day schedule.Weekday, maxPatients int, date time.Time) (*Appointment, error)
	Cancel(ctx context.Context, appointmentID, patientID uuid.UUID, now time.Time) (*Appointment, error)
	ActiveCount(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday) (int, error)
	CompletedBefore(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday, date time.Time, serialNo int) (int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]DoctorAppointment, error)
}

// Schedules is the read-only registry view the service consults.
type Schedules interface {
	Get(ctx context.Context, doctorID uuid.UUID, day schedule.Weekday) (*schedule.Entry, error)
	ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]schedule.Entry, error)
}

// Notifier receives booking lifecycle events. Implementations must not
// block the request path on delivery; failures are theirs to log.
type Notifier interface {
	BookingConfirmed(ctx context.Context, apt Appointment)
	BookingCancelled(ctx context.Context, apt Appointment)
}

// Service runs the slot-allocation and queue-position engine.
type Service struct {
	ledger    Ledger
	schedules Schedules
	notifier  Notifier
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	now       func() time.Time
}

// NewService constructs the appointments service. notifier and m may be
// nil.
func NewService(ledger Ledger, schedules Schedules, notifier Notifier, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if ledger == nil {
		panic("appointments: ledger required")
	}
	if schedules == nil {
		panic("appointments: schedules required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		ledger:    ledger,
		schedules: schedules,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// Book places a patient into the next occurrence of the doctor's weekday
// queue, assigning the lowest free serial within capacity.
func (s *Service) Book(ctx context.Context, patientID, doctorID uuid.UUID, day schedule.Weekday) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("mediplus.doctor_id", doctorID.String()),
		attribute.String("mediplus.weekday", string(day)),
	)
	started := s.now()

	entry, err := s.schedules.Get(ctx, doctorID, day)
	if errors.Is(err, schedule.ErrNotFound) {
		s.metrics.ObserveBooking("doctor_unavailable", s.now().Sub(started).Seconds())
		return nil, ErrDoctorUnavailable
	}
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking("error", s.now().Sub(started).Seconds())
		return nil, err
	}

	date := schedule.NextOccurrence(day, s.now())
	apt, err := s.ledger.Book(ctx, patientID, doctorID, day, entry.MaxPatients, date)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveBooking(bookingOutcome(err), s.now().Sub(started).Seconds())
		return nil, err
	}

	s.metrics.ObserveBooking("booked", s.now().Sub(started).Seconds())
	s.logger.Info("appointment booked",
		"appointment_id", apt.ID,
		"doctor_id", doctorID,
		"day", day,
		"serial_no", apt.SerialNo,
		"date", apt.Date.Format("2006-01-02"),
	)
	if s.notifier != nil {
		s.notifier.BookingConfirmed(ctx, *apt)
	}
	return apt, nil
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, ErrDuplicateBooking):
		return "duplicate"
	case errors.Is(err, ErrSerialsExhausted):
		return "exhausted"
	default:
		return "error"
	}
}

// Cancel withdraws a booked appointment if the 24-hour lockout has not
// started.
func (s *Service) Cancel(ctx context.Context, appointmentID, patientID uuid.UUID) error {
	ctx, span := tracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("mediplus.appointment_id", appointmentID.String()))

	apt, err := s.ledger.Cancel(ctx, appointmentID, patientID, s.now())
	switch {
	case errors.Is(err, ErrNotFound):
		s.metrics.ObserveCancellation("not_found")
		return err
	case errors.Is(err, ErrTooLateToCancel):
		s.metrics.ObserveCancellation("too_late")
		return err
	case err != nil:
		span.RecordError(err)
		s.metrics.ObserveCancellation("error")
		return err
	}

	s.metrics.ObserveCancellation("cancelled")
	s.logger.Info("appointment cancelled",
		"appointment_id", apt.ID,
		"doctor_id", apt.DoctorID,
		"serial_no", apt.SerialNo,
	)
	if s.notifier != nil {
		s.notifier.BookingCancelled(ctx, *apt)
	}
	return nil
}

// PatientQueue lists the patient's appointments with live queue estimates
// attached to Booked rows. Estimates are computed from the ledger on every
// call; completion state is never cached.
func (s *Service) PatientQueue(ctx context.Context, patientID uuid.UUID) ([]PatientAppointment, error) {
	list, err := s.ledger.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		apt := &list[i]
		if apt.Status != StatusBooked {
			continue
		}
		entry, err := s.schedules.Get(ctx, apt.DoctorID, apt.Weekday)
		if errors.Is(err, schedule.ErrNotFound) {
			// Schedule withdrawn since booking; no pacing data to estimate with.
			continue
		}
		if err != nil {
			return nil, err
		}
		completed, err := s.ledger.CompletedBefore(ctx, apt.DoctorID, apt.Weekday, apt.Date, apt.SerialNo)
		if err != nil {
			return nil, err
		}
		est := EstimateQueue(apt.SerialNo, completed, entry)
		apt.Estimate = &est
	}
	return list, nil
}

// DoctorDayQueues groups the doctor's appointments under each scheduled
// weekday, Monday-first, with planning estimates that ignore completion
// state.
func (s *Service) DoctorDayQueues(ctx context.Context, doctorID uuid.UUID) ([]DaySchedule, error) {
	entries, err := s.schedules.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	appts, err := s.ledger.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	byDay := make(map[schedule.Weekday]*DaySchedule, len(entries))
	queues := make([]DaySchedule, 0, len(entries))
	for _, entry := range entries {
		queues = append(queues, DaySchedule{
			Day:           entry.Weekday,
			MaxPatients:   entry.MaxPatients,
			StartTime:     entry.StartClock(),
			AvgPerPatient: entry.AvgPerPatient,
			Appointments:  []DoctorAppointment{},
		})
	}
	for i := range queues {
		byDay[queues[i].Day] = &queues[i]
	}

	entryByDay := make(map[schedule.Weekday]schedule.Entry, len(entries))
	for _, entry := range entries {
		entryByDay[entry.Weekday] = entry
	}

	for _, apt := range appts {
		day, ok := byDay[apt.Weekday]
		if !ok {
			// Appointment on a withdrawn schedule day; not part of any queue.
			continue
		}
		entry := entryByDay[apt.Weekday]
		apt.EstimatedTime = schedule.FormatClock(PlanningMinutes(&entry, apt.SerialNo))
		day.Appointments = append(day.Appointments, apt)
	}
	return queues, nil
}

// Availability reports, per scheduled weekday, how many slots remain open
// against the doctor's capacity.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID) ([]DayAvailability, error) {
	entries, err := s.schedules.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	out := make([]DayAvailability, 0, len(entries))
	for _, entry := range entries {
		active, err := s.ledger.ActiveCount(ctx, doctorID, entry.Weekday)
		if err != nil {
			return nil, err
		}
		slots := entry.MaxPatients - active
		if slots < 0 {
			slots = 0
		}
		out = append(out, DayAvailability{
			Day:            entry.Weekday,
			SlotsAvailable: slots,
			MaxPatients:    entry.MaxPatients,
		})
	}
	return out, nil
}
