package port

import (
	"context"
	"time"

	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// ConfigRepository defines persistence operations for approval
// configurations and the pass policy table.
type ConfigRepository interface {
	// ReplaceConfiguration atomically swaps the level rows for the
	// configuration's (plant, document type, operation) triple
	ReplaceConfiguration(ctx context.Context, cfg *entity.ApprovalConfiguration) error

	// GetConfiguration returns the configuration for a triple, or nil when
	// none is stored
	GetConfiguration(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error)

	// GetPassPolicy returns the risk-class to pass-color table for a plant
	GetPassPolicy(ctx context.Context, plantID string) (approval.PolicyTable, error)
}

// InstanceRepository defines persistence operations for ApprovalInstance
// and its level decisions.
type InstanceRepository interface {
	// Create inserts the instance and its level snapshot
	Create(ctx context.Context, instance *entity.ApprovalInstance) error

	// GetByID retrieves an instance with its levels
	GetByID(ctx context.Context, id int64) (*entity.ApprovalInstance, error)

	// GetByAppointmentID retrieves the instance submitted for an appointment
	GetByAppointmentID(ctx context.Context, appointmentID int64) (*entity.ApprovalInstance, error)

	// RecordLevelDecision writes the decision for one undecided level.
	// Returns false when the level already carries a decision.
	RecordLevelDecision(ctx context.Context, instanceID int64, levelIndex int, decision workflow.Status, comment string, decidedAt time.Time) (bool, error)

	// TransitionAggregate performs a compare-and-set on the aggregate
	// status and active level pointer. Returns false when the stored state
	// no longer matches the expected one.
	TransitionAggregate(ctx context.Context, id int64, fromStatus workflow.Status, fromActive int, toStatus workflow.Status, toActive int, decidedAt *time.Time) (bool, error)

	// CancelPendingLevels marks all undecided gating levels after the given
	// index as cancelled
	CancelPendingLevels(ctx context.Context, instanceID int64, afterIndex int, decidedAt time.Time) error
}

// AppointmentRepository defines persistence operations for Appointment.
type AppointmentRepository interface {
	// Create inserts the appointment with its visitors and belongings
	Create(ctx context.Context, appointment *entity.Appointment) error

	// GetByID retrieves an appointment with visitors and belongings
	GetByID(ctx context.Context, id int64) (*entity.Appointment, error)

	// SetApprovalInstance links the appointment to its approval instance
	SetApprovalInstance(ctx context.Context, id, instanceID int64) error

	// UpdatePassType stores the derived pass type
	UpdatePassType(ctx context.Context, id int64, passType entity.PassType) error

	// MarkCheckedIn records the check-in time iff none is set yet.
	// Returns false when the appointment was already checked in.
	MarkCheckedIn(ctx context.Context, id int64, t time.Time) (bool, error)

	// MarkCheckedOut records the check-out time iff the appointment is
	// checked in and not yet checked out. Returns false otherwise.
	MarkCheckedOut(ctx context.Context, id int64, t time.Time) (bool, error)

	// SetActive flips the activity flag
	SetActive(ctx context.Context, id int64, active bool) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
