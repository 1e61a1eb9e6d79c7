package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/workflow"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/sqlite"
)

// InstanceRepository implements port.InstanceRepository
type InstanceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewInstanceRepository creates a new instance repository
func NewInstanceRepository(db *sql.DB, logger *zap.Logger) port.InstanceRepository {
	return &InstanceRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the instance and its level snapshot
func (r *InstanceRepository) Create(ctx context.Context, instance *entity.ApprovalInstance) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		INSERT INTO approval_instances (
			appointment_id, plant_id, document_type, operation,
			aggregate_status, active_level_index, submitted_at, decided_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		instance.AppointmentID,
		instance.PlantID,
		instance.DocumentType,
		instance.Operation,
		instance.Aggregate.String(),
		instance.ActiveLevelIndex,
		instance.SubmittedAt,
		instance.DecidedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create instance", zap.Error(err))
		return fmt.Errorf("failed to create instance: %w", err)
	}

	if instance.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	for i := range instance.Levels {
		lvl := &instance.Levels[i]
		result, err := ex.ExecContext(ctx, `
			INSERT INTO level_decisions (
				instance_id, level_index, approver_id, notification_only, decision
			) VALUES (?, ?, ?, ?, ?)
		`,
			instance.ID, lvl.LevelIndex, lvl.ApproverID, lvl.NotificationOnly, lvl.Decision.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to create level decision %d: %w", lvl.LevelIndex, err)
		}
		if lvl.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		lvl.InstanceID = instance.ID
	}

	return nil
}

// GetByID retrieves an instance with its levels
func (r *InstanceRepository) GetByID(ctx context.Context, id int64) (*entity.ApprovalInstance, error) {
	return r.getOne(ctx, `WHERE id = ?`, id)
}

// GetByAppointmentID retrieves the instance submitted for an appointment
func (r *InstanceRepository) GetByAppointmentID(ctx context.Context, appointmentID int64) (*entity.ApprovalInstance, error) {
	return r.getOne(ctx, `WHERE appointment_id = ?`, appointmentID)
}

func (r *InstanceRepository) getOne(ctx context.Context, where string, arg interface{}) (*entity.ApprovalInstance, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	query := `
		SELECT id, appointment_id, plant_id, document_type, operation,
			aggregate_status, active_level_index, submitted_at, decided_at,
			created_at, updated_at
		FROM approval_instances ` + where

	var instance entity.ApprovalInstance
	var aggregate string
	var decidedAt sql.NullTime

	err := ex.QueryRowContext(ctx, query, arg).Scan(
		&instance.ID,
		&instance.AppointmentID,
		&instance.PlantID,
		&instance.DocumentType,
		&instance.Operation,
		&aggregate,
		&instance.ActiveLevelIndex,
		&instance.SubmittedAt,
		&decidedAt,
		&instance.CreatedAt,
		&instance.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get instance", zap.Error(err))
		return nil, fmt.Errorf("failed to get instance: %w", err)
	}

	instance.Aggregate = workflow.Status(aggregate)
	if decidedAt.Valid {
		instance.DecidedAt = &decidedAt.Time
	}

	if instance.Levels, err = r.levelsFor(ctx, instance.ID); err != nil {
		return nil, err
	}
	return &instance, nil
}

func (r *InstanceRepository) levelsFor(ctx context.Context, instanceID int64) ([]entity.LevelDecision, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	rows, err := ex.QueryContext(ctx, `
		SELECT id, instance_id, level_index, approver_id, notification_only,
			decision, comment, decided_at
		FROM level_decisions
		WHERE instance_id = ?
		ORDER BY level_index ASC
	`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list level decisions: %w", err)
	}
	defer rows.Close()

	var levels []entity.LevelDecision
	for rows.Next() {
		var lvl entity.LevelDecision
		var decision string
		var comment sql.NullString
		var decidedAt sql.NullTime

		err := rows.Scan(
			&lvl.ID,
			&lvl.InstanceID,
			&lvl.LevelIndex,
			&lvl.ApproverID,
			&lvl.NotificationOnly,
			&decision,
			&comment,
			&decidedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level decision: %w", err)
		}

		lvl.Decision = workflow.Status(decision)
		lvl.Comment = comment.String
		if decidedAt.Valid {
			lvl.DecidedAt = &decidedAt.Time
		}
		levels = append(levels, lvl)
	}
	return levels, rows.Err()
}

// RecordLevelDecision writes the decision for one undecided level. The
// WHERE clause keeps the write conditional: a level that already carries a
// decision is left untouched and the caller sees false.
func (r *InstanceRepository) RecordLevelDecision(ctx context.Context, instanceID int64, levelIndex int, decision workflow.Status, comment string, decidedAt time.Time) (bool, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		UPDATE level_decisions
		SET decision = ?, comment = ?, decided_at = ?
		WHERE instance_id = ? AND level_index = ? AND decided_at IS NULL
	`, decision.String(), comment, decidedAt, instanceID, levelIndex)
	if err != nil {
		r.logger.Error("Failed to record level decision",
			zap.Int64("instance_id", instanceID),
			zap.Int("level_index", levelIndex),
			zap.Error(err))
		return false, fmt.Errorf("failed to record level decision: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// TransitionAggregate performs a compare-and-set on the aggregate status
// and the active level pointer.
func (r *InstanceRepository) TransitionAggregate(ctx context.Context, id int64, fromStatus workflow.Status, fromActive int, toStatus workflow.Status, toActive int, decidedAt *time.Time) (bool, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	result, err := ex.ExecContext(ctx, `
		UPDATE approval_instances
		SET aggregate_status = ?, active_level_index = ?, decided_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND aggregate_status = ? AND active_level_index = ?
	`, toStatus.String(), toActive, decidedAt, id, fromStatus.String(), fromActive)
	if err != nil {
		r.logger.Error("Failed to transition aggregate",
			zap.Int64("id", id),
			zap.String("to_status", toStatus.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to transition aggregate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// CancelPendingLevels marks all undecided gating levels after the given
// index as cancelled. Cancelled levels never transition further.
func (r *InstanceRepository) CancelPendingLevels(ctx context.Context, instanceID int64, afterIndex int, decidedAt time.Time) error {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	_, err := ex.ExecContext(ctx, `
		UPDATE level_decisions
		SET decision = ?, decided_at = ?
		WHERE instance_id = ? AND level_index > ? AND decided_at IS NULL AND notification_only = 0
	`, workflow.StatusCancelled.String(), decidedAt, instanceID, afterIndex)
	if err != nil {
		r.logger.Error("Failed to cancel pending levels",
			zap.Int64("instance_id", instanceID),
			zap.Error(err))
		return fmt.Errorf("failed to cancel pending levels: %w", err)
	}
	return nil
}

// Verify interface compliance
var _ port.InstanceRepository = (*InstanceRepository)(nil)
