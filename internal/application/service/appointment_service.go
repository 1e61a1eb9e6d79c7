package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/event"
	"github.com/gatewise/gatepass/internal/domain/lifecycle"
)

// AppointmentService governs physical check-in and check-out against an
// approved, still-valid appointment. Transitions are one-way; re-entry
// after checkout requires a new appointment.
type AppointmentService interface {
	// CheckIn records gate entry using the server clock
	CheckIn(ctx context.Context, appointmentID int64) (*entity.Appointment, error)

	// CheckOut records gate exit using the server clock
	CheckOut(ctx context.Context, appointmentID int64) (*entity.Appointment, error)

	// Get returns an appointment with its visitors and pass state
	Get(ctx context.Context, appointmentID int64) (*entity.Appointment, error)

	// Deactivate withdraws an appointment so the validity guards refuse
	// further gate transitions
	Deactivate(ctx context.Context, appointmentID int64) error
}

type appointmentServiceImpl struct {
	appointmentRepo port.AppointmentRepository
	events          dispatcher.Dispatcher
	logger          Logger
	now             func() time.Time
}

// NewAppointmentService creates a new AppointmentService
func NewAppointmentService(
	appointmentRepo port.AppointmentRepository,
	events dispatcher.Dispatcher,
	logger Logger,
) AppointmentService {
	return &appointmentServiceImpl{
		appointmentRepo: appointmentRepo,
		events:          events,
		logger:          logger,
		now:             time.Now,
	}
}

// CheckIn records gate entry. Guards, in order: duplicate check-in,
// inactive or out-of-window appointment, pass not granted. The stored time
// is a conditional write, so two near-simultaneous calls yield exactly one
// success.
func (s *appointmentServiceImpl) CheckIn(ctx context.Context, appointmentID int64) (*entity.Appointment, error) {
	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	state := lifecycle.StateOf(appointment, now)
	machine := lifecycle.NewAppointmentMachine(state)
	if !machine.CanFire(lifecycle.TriggerCheckIn) {
		switch state {
		case lifecycle.StateCheckedIn, lifecycle.StateCheckedOut:
			return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrAlreadyCheckedIn)
		default:
			return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrInactiveAppointment)
		}
	}
	if !appointment.PassType.IsGranted() {
		return nil, fmt.Errorf("appointment %d pass is %s: %w", appointmentID, appointment.PassType, lifecycle.ErrApprovalNotGranted)
	}

	ok, err := s.appointmentRepo.MarkCheckedIn(ctx, appointmentID, now)
	if err != nil {
		return nil, fmt.Errorf("mark checked in: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrAlreadyCheckedIn)
	}
	appointment.CheckedInAt = &now

	s.logger.Info("Appointment checked in", "appointment_id", appointmentID)
	s.events.DispatchAsync(ctx, event.New(event.TypeCheckedIn, appointmentID, 0, map[string]interface{}{
		"checked_in_at": now,
	}))

	return appointment, nil
}

// CheckOut records gate exit. Guards, in order: no prior check-in,
// duplicate check-out, inactive or out-of-window appointment.
func (s *appointmentServiceImpl) CheckOut(ctx context.Context, appointmentID int64) (*entity.Appointment, error) {
	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.CheckedInAt == nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrNotCheckedIn)
	}
	if appointment.CheckedOutAt != nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrAlreadyCheckedOut)
	}

	now := s.now()
	if !appointment.Active || !appointment.WithinWindow(now) {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrInactiveAppointment)
	}

	machine := lifecycle.NewAppointmentMachine(lifecycle.StateOf(appointment, now))
	if err := machine.Fire(ctx, lifecycle.TriggerCheckOut); err != nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, err)
	}

	ok, err := s.appointmentRepo.MarkCheckedOut(ctx, appointmentID, now)
	if err != nil {
		return nil, fmt.Errorf("mark checked out: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrAlreadyCheckedOut)
	}
	appointment.CheckedOutAt = &now

	s.logger.Info("Appointment checked out", "appointment_id", appointmentID)
	s.events.DispatchAsync(ctx, event.New(event.TypeCheckedOut, appointmentID, 0, map[string]interface{}{
		"checked_out_at": now,
	}))

	return appointment, nil
}

// Get returns an appointment with its visitors and pass state
func (s *appointmentServiceImpl) Get(ctx context.Context, appointmentID int64) (*entity.Appointment, error) {
	return s.load(ctx, appointmentID)
}

// Deactivate withdraws an appointment
func (s *appointmentServiceImpl) Deactivate(ctx context.Context, appointmentID int64) error {
	appointment, err := s.load(ctx, appointmentID)
	if err != nil {
		return err
	}

	machine := lifecycle.NewAppointmentMachine(lifecycle.StateOf(appointment, s.now()))
	if !machine.CanFire(lifecycle.TriggerDeactivate) {
		return fmt.Errorf("appointment %d is %s: %w", appointmentID, machine.State(), lifecycle.ErrInvalidTransition)
	}

	if err := s.appointmentRepo.SetActive(ctx, appointmentID, false); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}

	s.logger.Info("Appointment deactivated", "appointment_id", appointmentID)
	return nil
}

func (s *appointmentServiceImpl) load(ctx context.Context, appointmentID int64) (*entity.Appointment, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if appointment == nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, lifecycle.ErrAppointmentNotFound)
	}
	return appointment, nil
}
