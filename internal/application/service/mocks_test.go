package service

import (
	"context"
	"time"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// In-memory fakes with optional function overrides, so most tests exercise
// realistic conditional-update behavior while failure paths stay injectable.

type fakeConfigRepo struct {
	config *entity.ApprovalConfiguration
	policy approval.PolicyTable

	getConfigFunc func(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error)
}

func (f *fakeConfigRepo) ReplaceConfiguration(ctx context.Context, cfg *entity.ApprovalConfiguration) error {
	f.config = cfg
	return nil
}

func (f *fakeConfigRepo) GetConfiguration(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error) {
	if f.getConfigFunc != nil {
		return f.getConfigFunc(ctx, plantID, documentType, operation)
	}
	return f.config, nil
}

func (f *fakeConfigRepo) GetPassPolicy(ctx context.Context, plantID string) (approval.PolicyTable, error) {
	if f.policy != nil {
		return f.policy, nil
	}
	return approval.PolicyTable{
		entity.RiskClassGeneral:    entity.PassYellow,
		entity.RiskClassContractor: entity.PassPurple,
		entity.RiskClassRestricted: entity.PassRed,
	}, nil
}

type fakeInstanceRepo struct {
	instance *entity.ApprovalInstance
}

func (f *fakeInstanceRepo) Create(ctx context.Context, instance *entity.ApprovalInstance) error {
	instance.ID = 1
	for i := range instance.Levels {
		instance.Levels[i].ID = int64(i + 1)
		instance.Levels[i].InstanceID = instance.ID
	}
	f.instance = copyInstance(instance)
	return nil
}

func (f *fakeInstanceRepo) GetByID(ctx context.Context, id int64) (*entity.ApprovalInstance, error) {
	if f.instance == nil || f.instance.ID != id {
		return nil, nil
	}
	return copyInstance(f.instance), nil
}

func (f *fakeInstanceRepo) GetByAppointmentID(ctx context.Context, appointmentID int64) (*entity.ApprovalInstance, error) {
	if f.instance == nil || f.instance.AppointmentID != appointmentID {
		return nil, nil
	}
	return copyInstance(f.instance), nil
}

func (f *fakeInstanceRepo) RecordLevelDecision(ctx context.Context, instanceID int64, levelIndex int, decision workflow.Status, comment string, decidedAt time.Time) (bool, error) {
	lvl := f.instance.Level(levelIndex)
	if lvl == nil || lvl.DecidedAt != nil {
		return false, nil
	}
	lvl.Decision = decision
	lvl.Comment = comment
	t := decidedAt
	lvl.DecidedAt = &t
	return true, nil
}

func (f *fakeInstanceRepo) TransitionAggregate(ctx context.Context, id int64, fromStatus workflow.Status, fromActive int, toStatus workflow.Status, toActive int, decidedAt *time.Time) (bool, error) {
	if f.instance.Aggregate != fromStatus || f.instance.ActiveLevelIndex != fromActive {
		return false, nil
	}
	f.instance.Aggregate = toStatus
	f.instance.ActiveLevelIndex = toActive
	f.instance.DecidedAt = decidedAt
	return true, nil
}

func (f *fakeInstanceRepo) CancelPendingLevels(ctx context.Context, instanceID int64, afterIndex int, decidedAt time.Time) error {
	for i := range f.instance.Levels {
		lvl := &f.instance.Levels[i]
		if lvl.LevelIndex > afterIndex && lvl.DecidedAt == nil && !lvl.NotificationOnly {
			lvl.Decision = workflow.StatusCancelled
			t := decidedAt
			lvl.DecidedAt = &t
		}
	}
	return nil
}

func copyInstance(src *entity.ApprovalInstance) *entity.ApprovalInstance {
	dst := *src
	dst.Levels = append([]entity.LevelDecision{}, src.Levels...)
	return &dst
}

type fakeAppointmentRepo struct {
	appointment *entity.Appointment

	markCheckedInFunc  func(ctx context.Context, id int64, t time.Time) (bool, error)
	markCheckedOutFunc func(ctx context.Context, id int64, t time.Time) (bool, error)
}

func (f *fakeAppointmentRepo) Create(ctx context.Context, appointment *entity.Appointment) error {
	appointment.ID = 1
	f.appointment = copyAppointment(appointment)
	return nil
}

func (f *fakeAppointmentRepo) GetByID(ctx context.Context, id int64) (*entity.Appointment, error) {
	if f.appointment == nil || f.appointment.ID != id {
		return nil, nil
	}
	return copyAppointment(f.appointment), nil
}

func (f *fakeAppointmentRepo) SetApprovalInstance(ctx context.Context, id, instanceID int64) error {
	f.appointment.ApprovalInstanceID = &instanceID
	return nil
}

func (f *fakeAppointmentRepo) UpdatePassType(ctx context.Context, id int64, passType entity.PassType) error {
	f.appointment.PassType = passType
	return nil
}

func (f *fakeAppointmentRepo) MarkCheckedIn(ctx context.Context, id int64, t time.Time) (bool, error) {
	if f.markCheckedInFunc != nil {
		return f.markCheckedInFunc(ctx, id, t)
	}
	if f.appointment.CheckedInAt != nil {
		return false, nil
	}
	at := t
	f.appointment.CheckedInAt = &at
	return true, nil
}

func (f *fakeAppointmentRepo) MarkCheckedOut(ctx context.Context, id int64, t time.Time) (bool, error) {
	if f.markCheckedOutFunc != nil {
		return f.markCheckedOutFunc(ctx, id, t)
	}
	if f.appointment.CheckedInAt == nil || f.appointment.CheckedOutAt != nil {
		return false, nil
	}
	at := t
	f.appointment.CheckedOutAt = &at
	return true, nil
}

func (f *fakeAppointmentRepo) SetActive(ctx context.Context, id int64, active bool) error {
	f.appointment.Active = active
	return nil
}

func copyAppointment(src *entity.Appointment) *entity.Appointment {
	dst := *src
	dst.Visitors = append([]entity.Visitor{}, src.Visitors...)
	return &dst
}

type fakeMasterData struct {
	unknownPlants      map[string]bool
	unknownUsers       map[string]bool
	unknownDepartments map[string]bool
}

func (f *fakeMasterData) PlantExists(ctx context.Context, plantID string) (bool, error) {
	return !f.unknownPlants[plantID], nil
}

func (f *fakeMasterData) DepartmentExists(ctx context.Context, departmentID string) (bool, error) {
	return !f.unknownDepartments[departmentID], nil
}

func (f *fakeMasterData) UserExists(ctx context.Context, userID string) (bool, error) {
	return !f.unknownUsers[userID], nil
}

type fakeTxManager struct{}

func (fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type fakeNotifier struct {
	notified []string
	err      error
}

func (f *fakeNotifier) NotifyApprover(ctx context.Context, approverID string, appointmentID int64, levelIndex int, notificationOnly bool) error {
	f.notified = append(f.notified, approverID)
	return f.err
}

var _ port.ConfigRepository = (*fakeConfigRepo)(nil)
var _ port.InstanceRepository = (*fakeInstanceRepo)(nil)
var _ port.AppointmentRepository = (*fakeAppointmentRepo)(nil)
var _ port.MasterData = (*fakeMasterData)(nil)
var _ port.Notifier = (*fakeNotifier)(nil)
