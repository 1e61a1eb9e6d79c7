package service

import (
	"context"
	"fmt"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/event"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// PassService derives the appointment pass type from the aggregate
// approval status. It is the sole writer of the pass type; callers never
// set it directly.
type PassService interface {
	// Recompute applies the issuance policy for the given aggregate status
	// and stores the result when it changed
	Recompute(ctx context.Context, appointmentID int64, status workflow.Status) (entity.PassType, error)

	// Register subscribes the service to aggregate status changes
	Register(d dispatcher.Dispatcher)
}

type passServiceImpl struct {
	configRepo      port.ConfigRepository
	appointmentRepo port.AppointmentRepository
	events          dispatcher.Dispatcher
	logger          Logger
}

// NewPassService creates a new PassService
func NewPassService(
	configRepo port.ConfigRepository,
	appointmentRepo port.AppointmentRepository,
	events dispatcher.Dispatcher,
	logger Logger,
) PassService {
	return &passServiceImpl{
		configRepo:      configRepo,
		appointmentRepo: appointmentRepo,
		events:          events,
		logger:          logger,
	}
}

// Recompute applies the issuance policy and stores the result when it
// changed. Re-evaluation with the same inputs is a no-op.
func (s *passServiceImpl) Recompute(ctx context.Context, appointmentID int64, status workflow.Status) (entity.PassType, error) {
	appointment, err := s.appointmentRepo.GetByID(ctx, appointmentID)
	if err != nil {
		return "", fmt.Errorf("get appointment: %w", err)
	}
	if appointment == nil {
		return "", fmt.Errorf("appointment %d not found", appointmentID)
	}

	table, err := s.configRepo.GetPassPolicy(ctx, appointment.PlantID)
	if err != nil {
		return "", fmt.Errorf("load pass policy: %w", err)
	}

	passType := approval.IssuePass(status, appointment.RiskClass, table)
	if passType == appointment.PassType {
		return passType, nil
	}

	if err := s.appointmentRepo.UpdatePassType(ctx, appointmentID, passType); err != nil {
		return "", fmt.Errorf("update pass type: %w", err)
	}

	s.logger.Info("Pass type changed",
		"appointment_id", appointmentID,
		"pass_type", passType.String(),
		"aggregate_status", status.String(),
	)

	s.events.DispatchAsync(ctx, event.New(event.TypePassTypeChanged, appointmentID, 0, map[string]interface{}{
		"pass_type": passType.String(),
	}))

	return passType, nil
}

// Register subscribes the service to aggregate status changes
func (s *passServiceImpl) Register(d dispatcher.Dispatcher) {
	d.SubscribeNamed(event.TypeStatusChanged, "pass-issuance", func(ctx context.Context, evt *event.Event) error {
		status := workflow.Status(evt.GetPayloadString("aggregate_status"))
		if !status.IsValid() {
			return fmt.Errorf("invalid aggregate status %q in event %s", evt.GetPayloadString("aggregate_status"), evt.ID)
		}
		_, err := s.Recompute(ctx, evt.AppointmentID, status)
		return err
	})
}
