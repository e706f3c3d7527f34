package appointments

import "errors"

var (
	// ErrDoctorUnavailable is returned when the doctor has no schedule for
	// the requested weekday.
	ErrDoctorUnavailable = errors.New("doctor is not available on this day")

	// ErrCapacityExceeded is returned when every slot for the weekday is
	// held by a non-cancelled appointment.
	ErrCapacityExceeded = errors.New("no slots available for this day")

	// ErrDuplicateBooking is returned when the patient already holds a
	// booked appointment with the same doctor on the same weekday.
	ErrDuplicateBooking = errors.New("patient already has an appointment with this doctor on this day")

	// ErrSerialsExhausted is returned when no serial number within capacity
	// is free. The capacity check makes this unreachable in practice; the
	// allocator still guards against it on its own.
	ErrSerialsExhausted = errors.New("no serial numbers available for this day")

	// ErrNotFound is returned when no booked appointment matches the given
	// identifiers, including attempts to act on already-terminal rows.
	ErrNotFound = errors.New("appointment not found or no longer booked")

	// ErrTooLateToCancel is returned when cancellation is requested inside
	// the 24-hour lockout before the appointment date.
	ErrTooLateToCancel = errors.New("cannot cancel within 24 hours of the appointment")
)
