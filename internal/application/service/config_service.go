package service

import (
	"context"
	"fmt"

	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
)

// ConfigService manages approval configurations for the submission screens.
type ConfigService interface {
	// Replace validates and atomically replaces the configuration for its
	// (plant, document type, operation) triple
	Replace(ctx context.Context, cfg *entity.ApprovalConfiguration) error

	// Get returns the stored configuration for a triple
	Get(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error)
}

type configServiceImpl struct {
	configRepo port.ConfigRepository
	masterData port.MasterData
	logger     Logger
}

// NewConfigService creates a new ConfigService
func NewConfigService(configRepo port.ConfigRepository, masterData port.MasterData, logger Logger) ConfigService {
	return &configServiceImpl{
		configRepo: configRepo,
		masterData: masterData,
		logger:     logger,
	}
}

// Replace validates and atomically replaces a configuration. Structural
// invariants are checked first, then every referenced plant, approver and
// department is verified against master data.
func (s *configServiceImpl) Replace(ctx context.Context, cfg *entity.ApprovalConfiguration) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%s: %w", err, ErrInvalidSubmission)
	}

	if ok, err := s.masterData.PlantExists(ctx, cfg.PlantID); err != nil {
		return fmt.Errorf("plant lookup: %w", err)
	} else if !ok {
		return fmt.Errorf("unknown plant %s: %w", cfg.PlantID, ErrInvalidSubmission)
	}
	for _, lvl := range cfg.Levels {
		if lvl.ApproverID != "" {
			if ok, err := s.masterData.UserExists(ctx, lvl.ApproverID); err != nil {
				return fmt.Errorf("approver lookup: %w", err)
			} else if !ok {
				return fmt.Errorf("unknown approver %s at level %d: %w", lvl.ApproverID, lvl.LevelIndex, ErrInvalidSubmission)
			}
		}
		if lvl.DepartmentID != "" {
			if ok, err := s.masterData.DepartmentExists(ctx, lvl.DepartmentID); err != nil {
				return fmt.Errorf("department lookup: %w", err)
			} else if !ok {
				return fmt.Errorf("unknown department %s at level %d: %w", lvl.DepartmentID, lvl.LevelIndex, ErrInvalidSubmission)
			}
		}
	}

	if err := s.configRepo.ReplaceConfiguration(ctx, cfg); err != nil {
		s.logger.Error("Failed to replace configuration",
			"error", err,
			"plant_id", cfg.PlantID,
			"document_type", cfg.DocumentType,
			"operation", cfg.Operation,
		)
		return err
	}

	s.logger.Info("Configuration replaced",
		"plant_id", cfg.PlantID,
		"document_type", cfg.DocumentType,
		"operation", cfg.Operation,
		"levels", len(cfg.Levels),
	)
	return nil
}

// Get returns the stored configuration for a triple
func (s *configServiceImpl) Get(ctx context.Context, plantID, documentType, operation string) (*entity.ApprovalConfiguration, error) {
	cfg, err := s.configRepo.GetConfiguration(ctx, plantID, documentType, operation)
	if err != nil {
		return nil, fmt.Errorf("get configuration: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("%s/%s/%s: %w", plantID, documentType, operation, approval.ErrNoApprovalChain)
	}
	return cfg, nil
}
