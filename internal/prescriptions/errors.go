package prescriptions

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongDay means the appointment's weekday is not today: the
	// consultation has not happened yet (or its day has passed), so no
	// prescription can be filed.
	ErrWrongDay = errors.New("prescriptions: appointment is not scheduled for today")

	// ErrAlreadyPrescribed means a prescription already exists for the
	// appointment.
	ErrAlreadyPrescribed = errors.New("prescriptions: appointment already has a prescription")

	// ErrInvalid marks a rejected prescription payload.
	ErrInvalid = errors.New("prescriptions: invalid prescription")
)

func errInvalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalid, msg)
}
