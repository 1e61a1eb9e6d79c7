package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/event"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ErrInvalidSubmission is returned when a submission payload fails
// validation before any state is created.
var ErrInvalidSubmission = errors.New("invalid submission")

// SubmitRequest carries the appointment payload from the submission form.
type SubmitRequest struct {
	PlantID         string
	HostID          string
	DepartmentID    string
	Purpose         string
	RiskClass       string
	Operation       string
	AppointmentDate time.Time
	ValidTill       time.Time
	Visitors        []VisitorInput
}

// VisitorInput is one visitor on a submission, with declared belongings.
type VisitorInput struct {
	Name       string
	IDNumber   string
	Phone      string
	Belongings []BelongingInput
}

// BelongingInput is one tracked asset on a submission.
type BelongingInput struct {
	Description string
	SerialNo    string
}

// WorkflowService drives appointments through their approval chains.
type WorkflowService interface {
	// Submit validates the payload, resolves the approval chain and creates
	// the appointment together with its approval instance
	Submit(ctx context.Context, req SubmitRequest) (*entity.Appointment, error)

	// RecordDecision applies one approver decision to the active level and
	// advances or terminates the chain
	RecordDecision(ctx context.Context, instanceID int64, levelIndex int, approverID string, decision workflow.Status, comment string) (*entity.ApprovalInstance, error)

	// GetInstance returns the approval instance submitted for an appointment
	GetInstance(ctx context.Context, appointmentID int64) (*entity.ApprovalInstance, error)
}

type workflowServiceImpl struct {
	configRepo      port.ConfigRepository
	instanceRepo    port.InstanceRepository
	appointmentRepo port.AppointmentRepository
	masterData      port.MasterData
	txManager       port.TransactionManager
	events          dispatcher.Dispatcher
	logger          Logger
	now             func() time.Time
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(
	configRepo port.ConfigRepository,
	instanceRepo port.InstanceRepository,
	appointmentRepo port.AppointmentRepository,
	masterData port.MasterData,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) WorkflowService {
	return &workflowServiceImpl{
		configRepo:      configRepo,
		instanceRepo:    instanceRepo,
		appointmentRepo: appointmentRepo,
		masterData:      masterData,
		txManager:       txManager,
		events:          events,
		logger:          logger,
		now:             time.Now,
	}
}

// Submit validates the payload, resolves the chain and creates the
// appointment with its approval instance in one transaction. Configuration
// and resolution failures surface before anything is persisted.
func (s *workflowServiceImpl) Submit(ctx context.Context, req SubmitRequest) (*entity.Appointment, error) {
	if err := s.validateSubmission(ctx, &req); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.GetConfiguration(ctx, req.PlantID, entity.DocumentTypeAppointment, req.Operation)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%s/%s/%s: %w", req.PlantID, entity.DocumentTypeAppointment, req.Operation, approval.ErrNoApprovalChain)
	}

	appointment := s.buildAppointment(&req)

	chain, err := approval.ResolveChain(cfg.Levels, approval.Document{
		PlantID:      req.PlantID,
		DocumentType: entity.DocumentTypeAppointment,
		Operation:    req.Operation,
		HostID:       req.HostID,
		DepartmentID: req.DepartmentID,
		HasAssets:    appointment.HasAssets(),
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	instance := &entity.ApprovalInstance{
		PlantID:          req.PlantID,
		DocumentType:     entity.DocumentTypeAppointment,
		Operation:        req.Operation,
		Aggregate:        workflow.StatusPending,
		ActiveLevelIndex: approval.FirstGating(chain),
		SubmittedAt:      now,
	}
	for _, b := range chain {
		instance.Levels = append(instance.Levels, entity.LevelDecision{
			LevelIndex:       b.LevelIndex,
			ApproverID:       b.ApproverID,
			NotificationOnly: b.NotificationOnly,
			Decision:         workflow.StatusPending,
		})
	}

	// A chain of notification-only levels never gates: approved on submit.
	if instance.ActiveLevelIndex == 0 {
		instance.Aggregate = workflow.StatusApproved
		instance.DecidedAt = &now
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.appointmentRepo.Create(txCtx, appointment); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		instance.AppointmentID = appointment.ID
		if err := s.instanceRepo.Create(txCtx, instance); err != nil {
			return fmt.Errorf("create instance: %w", err)
		}
		if err := s.appointmentRepo.SetApprovalInstance(txCtx, appointment.ID, instance.ID); err != nil {
			return fmt.Errorf("link instance: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to submit appointment", "error", err, "plant_id", req.PlantID)
		return nil, err
	}
	appointment.ApprovalInstanceID = &instance.ID

	s.logger.Info("Appointment submitted",
		"appointment_id", appointment.ID,
		"instance_id", instance.ID,
		"levels", len(instance.Levels),
		"active_level", instance.ActiveLevelIndex,
	)

	s.events.DispatchAsync(ctx, event.New(event.TypeInstanceCreated, appointment.ID, instance.ID, map[string]interface{}{
		"aggregate_status": instance.Aggregate.String(),
	}))
	s.notifyLevels(ctx, appointment.ID, instance)

	if instance.Aggregate == workflow.StatusApproved {
		if err := s.events.Dispatch(ctx, s.statusEvent(appointment.ID, instance)); err != nil {
			return nil, err
		}
		// Pick up the pass type derived by the status subscriber.
		refreshed, err := s.appointmentRepo.GetByID(ctx, appointment.ID)
		if err == nil && refreshed != nil {
			appointment.PassType = refreshed.PassType
		}
	}

	return appointment, nil
}

// RecordDecision applies one decision to the active level. All guards run
// against the instance loaded inside the transaction; the level write and
// the aggregate transition are conditional updates, so a decision lands
// exactly once or is rejected outright.
func (s *workflowServiceImpl) RecordDecision(ctx context.Context, instanceID int64, levelIndex int, approverID string, decision workflow.Status, comment string) (*entity.ApprovalInstance, error) {
	if decision != workflow.StatusApproved && decision != workflow.StatusRejected {
		return nil, fmt.Errorf("%q: %w", decision, approval.ErrInvalidDecision)
	}

	var instance *entity.ApprovalInstance
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		inst, err := s.instanceRepo.GetByID(txCtx, instanceID)
		if err != nil {
			return fmt.Errorf("get instance: %w", err)
		}
		if inst == nil {
			return fmt.Errorf("instance %d: %w", instanceID, approval.ErrInstanceNotFound)
		}

		lvl := inst.Level(levelIndex)
		if lvl == nil {
			return fmt.Errorf("level %d: %w", levelIndex, approval.ErrLevelNotActive)
		}
		if approverID != lvl.ApproverID {
			return fmt.Errorf("approver %s: %w", approverID, approval.ErrNotAuthorized)
		}
		if inst.Aggregate.IsTerminal() {
			return fmt.Errorf("instance %d is %s: %w", instanceID, inst.Aggregate, approval.ErrInstanceTerminal)
		}
		if lvl.NotificationOnly {
			return fmt.Errorf("level %d: %w", levelIndex, approval.ErrLevelNotActionable)
		}
		if lvl.Decision.IsDecided() {
			return fmt.Errorf("level %d: %w", levelIndex, approval.ErrLevelAlreadyDecided)
		}
		if levelIndex != inst.ActiveLevelIndex {
			return fmt.Errorf("level %d, active is %d: %w", levelIndex, inst.ActiveLevelIndex, approval.ErrLevelNotActive)
		}

		now := s.now()
		ok, err := s.instanceRepo.RecordLevelDecision(txCtx, instanceID, levelIndex, decision, comment, now)
		if err != nil {
			return fmt.Errorf("record decision: %w", err)
		}
		if !ok {
			return fmt.Errorf("level %d: %w", levelIndex, approval.ErrLevelAlreadyDecided)
		}

		switch decision {
		case workflow.StatusApproved:
			next := inst.NextGatingLevel(levelIndex)
			toStatus := workflow.StatusPending
			var decidedAt *time.Time
			if next == 0 {
				toStatus = workflow.StatusApproved
				decidedAt = &now
			}
			ok, err = s.instanceRepo.TransitionAggregate(txCtx, instanceID, workflow.StatusPending, levelIndex, toStatus, next, decidedAt)
		case workflow.StatusRejected:
			if err := s.instanceRepo.CancelPendingLevels(txCtx, instanceID, levelIndex, now); err != nil {
				return fmt.Errorf("cancel pending levels: %w", err)
			}
			ok, err = s.instanceRepo.TransitionAggregate(txCtx, instanceID, workflow.StatusPending, levelIndex, workflow.StatusRejected, 0, &now)
		}
		if err != nil {
			return fmt.Errorf("transition aggregate: %w", err)
		}
		if !ok {
			return fmt.Errorf("instance %d: %w", instanceID, approval.ErrInstanceStale)
		}

		instance, err = s.instanceRepo.GetByID(txCtx, instanceID)
		if err != nil {
			return fmt.Errorf("reload instance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Decision recorded",
		"instance_id", instanceID,
		"level_index", levelIndex,
		"decision", decision.String(),
		"aggregate_status", instance.Aggregate.String(),
	)

	if instance.Aggregate != workflow.StatusPending {
		if err := s.events.Dispatch(ctx, s.statusEvent(instance.AppointmentID, instance)); err != nil {
			return nil, err
		}
	} else if active := instance.Level(instance.ActiveLevelIndex); active != nil {
		s.events.DispatchAsync(ctx, event.New(event.TypeLevelActivated, instance.AppointmentID, instance.ID, map[string]interface{}{
			"approver_id":       active.ApproverID,
			"level_index":       active.LevelIndex,
			"notification_only": false,
		}))
	}

	return instance, nil
}

// GetInstance returns the approval instance submitted for an appointment
func (s *workflowServiceImpl) GetInstance(ctx context.Context, appointmentID int64) (*entity.ApprovalInstance, error) {
	instance, err := s.instanceRepo.GetByAppointmentID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("get instance: %w", err)
	}
	if instance == nil {
		return nil, fmt.Errorf("appointment %d: %w", appointmentID, approval.ErrInstanceNotFound)
	}
	return instance, nil
}

func (s *workflowServiceImpl) validateSubmission(ctx context.Context, req *SubmitRequest) error {
	if req.Operation == "" {
		req.Operation = entity.OperationCreate
	}
	if req.RiskClass == "" {
		req.RiskClass = entity.RiskClassGeneral
	}
	if req.PlantID == "" || req.HostID == "" {
		return fmt.Errorf("plant_id and host_id are required: %w", ErrInvalidSubmission)
	}
	if len(req.Visitors) == 0 {
		return fmt.Errorf("at least one visitor is required: %w", ErrInvalidSubmission)
	}
	if !req.ValidTill.After(req.AppointmentDate) {
		return fmt.Errorf("valid_till must be after appointment_date: %w", ErrInvalidSubmission)
	}

	if ok, err := s.masterData.PlantExists(ctx, req.PlantID); err != nil {
		return fmt.Errorf("plant lookup: %w", err)
	} else if !ok {
		return fmt.Errorf("unknown plant %s: %w", req.PlantID, ErrInvalidSubmission)
	}
	if ok, err := s.masterData.UserExists(ctx, req.HostID); err != nil {
		return fmt.Errorf("host lookup: %w", err)
	} else if !ok {
		return fmt.Errorf("unknown host %s: %w", req.HostID, ErrInvalidSubmission)
	}
	if req.DepartmentID != "" {
		if ok, err := s.masterData.DepartmentExists(ctx, req.DepartmentID); err != nil {
			return fmt.Errorf("department lookup: %w", err)
		} else if !ok {
			return fmt.Errorf("unknown department %s: %w", req.DepartmentID, ErrInvalidSubmission)
		}
	}
	return nil
}

func (s *workflowServiceImpl) buildAppointment(req *SubmitRequest) *entity.Appointment {
	appointment := &entity.Appointment{
		Code:            uuid.NewString(),
		PlantID:         req.PlantID,
		HostID:          req.HostID,
		DepartmentID:    req.DepartmentID,
		Purpose:         req.Purpose,
		RiskClass:       req.RiskClass,
		AppointmentDate: req.AppointmentDate,
		ValidTill:       req.ValidTill,
		PassType:        entity.PassPending,
		Active:          true,
	}
	for _, v := range req.Visitors {
		visitor := entity.Visitor{
			Name:     v.Name,
			IDNumber: v.IDNumber,
			Phone:    v.Phone,
		}
		for _, b := range v.Belongings {
			visitor.Belongings = append(visitor.Belongings, entity.Belonging{
				Description: b.Description,
				SerialNo:    b.SerialNo,
			})
		}
		appointment.Visitors = append(appointment.Visitors, visitor)
	}
	return appointment
}

// notifyLevels emits level activation events for the submission: every
// notification-only level immediately and in parallel, plus the first
// gating level awaiting a decision.
func (s *workflowServiceImpl) notifyLevels(ctx context.Context, appointmentID int64, instance *entity.ApprovalInstance) {
	for i := range instance.Levels {
		lvl := &instance.Levels[i]
		if !lvl.NotificationOnly && lvl.LevelIndex != instance.ActiveLevelIndex {
			continue
		}
		s.events.DispatchAsync(ctx, event.New(event.TypeLevelActivated, appointmentID, instance.ID, map[string]interface{}{
			"approver_id":       lvl.ApproverID,
			"level_index":       lvl.LevelIndex,
			"notification_only": lvl.NotificationOnly,
		}))
	}
}

func (s *workflowServiceImpl) statusEvent(appointmentID int64, instance *entity.ApprovalInstance) *event.Event {
	return event.New(event.TypeStatusChanged, appointmentID, instance.ID, map[string]interface{}{
		"aggregate_status": instance.Aggregate.String(),
	})
}
