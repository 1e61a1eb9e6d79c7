package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/sqlite"
)

// ConfigRepository implements port.ConfigRepository
type ConfigRepository struct {
	db     *sql.DB
	tx     port.TransactionManager
	logger *zap.Logger
}

// NewConfigRepository creates a new configuration repository
func NewConfigRepository(db *sql.DB, tx port.TransactionManager, logger *zap.Logger) port.ConfigRepository {
	return &ConfigRepository{
		db:     db,
		tx:     tx,
		logger: logger,
	}
}

// ReplaceConfiguration atomically swaps the level rows for the triple
func (r *ConfigRepository) ReplaceConfiguration(ctx context.Context, cfg *entity.ApprovalConfiguration) error {
	return r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		ex := sqlite.ExecutorFromContext(txCtx, r.db)

		_, err := ex.ExecContext(txCtx, `
			INSERT INTO approval_configurations (plant_id, document_type, operation, department_specific)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(plant_id, document_type, operation)
			DO UPDATE SET department_specific = excluded.department_specific, updated_at = CURRENT_TIMESTAMP
		`, cfg.PlantID, cfg.DocumentType, cfg.Operation, cfg.DepartmentSpecific)
		if err != nil {
			return fmt.Errorf("upsert configuration: %w", err)
		}

		_, err = ex.ExecContext(txCtx, `
			DELETE FROM approval_level_configs
			WHERE plant_id = ? AND document_type = ? AND operation = ?
		`, cfg.PlantID, cfg.DocumentType, cfg.Operation)
		if err != nil {
			return fmt.Errorf("delete level configs: %w", err)
		}

		for i := range cfg.Levels {
			lvl := &cfg.Levels[i]
			result, err := ex.ExecContext(txCtx, `
				INSERT INTO approval_level_configs (
					plant_id, document_type, operation, level_index, department_id,
					approver_id, host_substitution, notification_only, asset_based
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`,
				cfg.PlantID, cfg.DocumentType, cfg.Operation, lvl.LevelIndex,
				nullString(lvl.DepartmentID), nullString(lvl.ApproverID),
				lvl.HostSubstitution, lvl.NotificationOnly, lvl.AssetBased,
			)
			if err != nil {
				return fmt.Errorf("insert level %d: %w", lvl.LevelIndex, err)
			}
			if lvl.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			lvl.PlantID = cfg.PlantID
			lvl.DocumentType = cfg.DocumentType
			lvl.Operation = cfg.Operation
		}
		return nil
	})
}

// GetConfiguration returns the configuration for a triple, or nil
func (r *ConfigRepository) GetConfiguration(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	cfg := &entity.ApprovalConfiguration{
		PlantID:      plantID,
		DocumentType: documentType,
		Operation:    operation,
	}

	err := ex.QueryRowContext(ctx, `
		SELECT department_specific
		FROM approval_configurations
		WHERE plant_id = ? AND document_type = ? AND operation = ?
	`, plantID, documentType, operation).Scan(&cfg.DepartmentSpecific)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get configuration", zap.String("plant_id", plantID), zap.Error(err))
		return nil, fmt.Errorf("failed to get configuration: %w", err)
	}

	rows, err := ex.QueryContext(ctx, `
		SELECT id, level_index, department_id, approver_id,
			host_substitution, notification_only, asset_based,
			created_at, updated_at
		FROM approval_level_configs
		WHERE plant_id = ? AND document_type = ? AND operation = ?
		ORDER BY level_index ASC
	`, plantID, documentType, operation)
	if err != nil {
		return nil, fmt.Errorf("failed to list level configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		lvl := entity.ApprovalLevelConfig{
			PlantID:      plantID,
			DocumentType: documentType,
			Operation:    operation,
		}
		var departmentID, approverID sql.NullString

		err := rows.Scan(
			&lvl.ID,
			&lvl.LevelIndex,
			&departmentID,
			&approverID,
			&lvl.HostSubstitution,
			&lvl.NotificationOnly,
			&lvl.AssetBased,
			&lvl.CreatedAt,
			&lvl.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan level config: %w", err)
		}
		lvl.DepartmentID = departmentID.String
		lvl.ApproverID = approverID.String
		cfg.Levels = append(cfg.Levels, lvl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetPassPolicy returns the risk-class to pass-color table for a plant
func (r *ConfigRepository) GetPassPolicy(ctx context.Context, plantID string) (approval.PolicyTable, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	rows, err := ex.QueryContext(ctx, `
		SELECT risk_class, pass_type FROM pass_policies WHERE plant_id = ?
	`, plantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pass policy: %w", err)
	}
	defer rows.Close()

	table := make(approval.PolicyTable)
	for rows.Next() {
		var riskClass, passType string
		if err := rows.Scan(&riskClass, &passType); err != nil {
			return nil, fmt.Errorf("failed to scan pass policy: %w", err)
		}
		table[riskClass] = entity.PassType(passType)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("pass policy for plant %s: %w", plantID, err)
	}
	return table, nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// Verify interface compliance
var _ port.ConfigRepository = (*ConfigRepository)(nil)
