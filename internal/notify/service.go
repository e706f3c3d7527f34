package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediplus/clinic-platform/internal/appointments"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Contact is the delivery address for one patient.
type Contact struct {
	Name  string
	Email string
}

// ContactDirectory resolves a patient ID to their contact details.
type ContactDirectory interface {
	Contact(ctx context.Context, patientID uuid.UUID) (*Contact, error)
}

// sendTimeout bounds a single delivery attempt once detached from the
// request.
const sendTimeout = 10 * time.Second

// Service emails patients about booking lifecycle events. It implements
// appointments.Notifier; deliveries run off the request path and
// failures are logged, never surfaced to the caller.
type Service struct {
	email    EmailSender
	patients ContactDirectory
	logger   *logging.Logger

	// sync delivers inline instead of spawning a goroutine. Tests only.
	sync bool
}

// NewService creates a booking notification service. A nil email sender
// disables delivery.
func NewService(email EmailSender, patients ContactDirectory, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if email == nil {
		email = NewStubEmailSender(logger)
	}
	return &Service{email: email, patients: patients, logger: logger}
}

// BookingConfirmed emails the patient their serial and date.
func (s *Service) BookingConfirmed(ctx context.Context, apt appointments.Appointment) {
	s.deliver(ctx, apt.PatientID, EmailMessage{
		Subject: "Your appointment is confirmed",
		Body: fmt.Sprintf(
			"Your appointment on %s, %s is confirmed.\nYour serial number is %d.",
			apt.Weekday, apt.Date.Format("January 2, 2006"), apt.SerialNo,
		),
	})
}

// BookingCancelled emails the patient that their booking was withdrawn.
func (s *Service) BookingCancelled(ctx context.Context, apt appointments.Appointment) {
	s.deliver(ctx, apt.PatientID, EmailMessage{
		Subject: "Your appointment has been cancelled",
		Body: fmt.Sprintf(
			"Your appointment on %s, %s (serial %d) has been cancelled.",
			apt.Weekday, apt.Date.Format("January 2, 2006"), apt.SerialNo,
		),
	})
}

func (s *Service) deliver(ctx context.Context, patientID uuid.UUID, msg EmailMessage) {
	if s.patients == nil {
		return
	}
	if s.sync {
		s.send(ctx, patientID, msg)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		s.send(ctx, patientID, msg)
	}()
}

func (s *Service) send(ctx context.Context, patientID uuid.UUID, msg EmailMessage) {
	contact, err := s.patients.Contact(ctx, patientID)
	if err != nil {
		s.logger.Error("notify: patient contact lookup failed", "error", err, "patient_id", patientID)
		return
	}
	if contact.Email == "" {
		return
	}
	msg.To = contact.Email
	msg.ToName = contact.Name
	if err := s.email.Send(ctx, msg); err != nil {
		s.logger.Error("notify: delivery failed", "error", err, "patient_id", patientID)
	}
}

var _ appointments.Notifier = (*Service)(nil)
