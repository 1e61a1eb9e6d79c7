package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/sqlite"
)

// MasterDataRepository implements port.MasterData against the local
// reference tables kept in sync by the master-data screens.
type MasterDataRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMasterDataRepository creates a new master data repository
func NewMasterDataRepository(db *sql.DB, logger *zap.Logger) port.MasterData {
	return &MasterDataRepository{
		db:     db,
		logger: logger,
	}
}

// PlantExists reports whether the plant is known
func (r *MasterDataRepository) PlantExists(ctx context.Context, plantID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM plants WHERE id = ?`, plantID)
}

// DepartmentExists reports whether the department is known
func (r *MasterDataRepository) DepartmentExists(ctx context.Context, departmentID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM departments WHERE id = ?`, departmentID)
}

// UserExists reports whether the user is known
func (r *MasterDataRepository) UserExists(ctx context.Context, userID string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM users WHERE id = ?`, userID)
}

func (r *MasterDataRepository) exists(ctx context.Context, query, id string) (bool, error) {
	ex := sqlite.ExecutorFromContext(ctx, r.db)

	var one int
	err := ex.QueryRowContext(ctx, query, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		r.logger.Error("Master data lookup failed", zap.String("id", id), zap.Error(err))
		return false, fmt.Errorf("master data lookup: %w", err)
	}
	return true, nil
}

// Verify interface compliance
var _ port.MasterData = (*MasterDataRepository)(nil)
