package lifecycle

import "errors"

var (
	// ErrInvalidTransition is returned when a transition is not allowed
	ErrInvalidTransition = errors.New("invalid lifecycle transition")

	// ErrGuardFailed is returned when a guard condition fails
	ErrGuardFailed = errors.New("guard condition failed")

	// ErrAlreadyCheckedIn is returned for a repeated check-in; duplicates
	// are rejected, never silently accepted.
	ErrAlreadyCheckedIn = errors.New("appointment already checked in")

	// ErrAlreadyCheckedOut is returned for a repeated check-out
	ErrAlreadyCheckedOut = errors.New("appointment already checked out")

	// ErrNotCheckedIn is returned for a check-out without a prior check-in
	ErrNotCheckedIn = errors.New("appointment not checked in")

	// ErrInactiveAppointment is returned when the appointment is
	// deactivated or the current time lies outside its validity window
	ErrInactiveAppointment = errors.New("appointment inactive or outside validity window")

	// ErrApprovalNotGranted is returned when the pass type does not
	// permit entry
	ErrApprovalNotGranted = errors.New("approval not granted for appointment")

	// ErrAppointmentNotFound is returned when no appointment exists for
	// the given identifier
	ErrAppointmentNotFound = errors.New("appointment not found")
)
