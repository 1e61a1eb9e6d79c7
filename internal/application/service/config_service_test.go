package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewise/gatepass/internal/domain/approval"
	"github.com/gatewise/gatepass/internal/domain/entity"
)

func validConfig() *entity.ApprovalConfiguration {
	return &entity.ApprovalConfiguration{
		PlantID:      "P001",
		DocumentType: entity.DocumentTypeAppointment,
		Operation:    entity.OperationCreate,
		Levels: []entity.ApprovalLevelConfig{
			{LevelIndex: 1, HostSubstitution: true},
			{LevelIndex: 2, ApproverID: "U2"},
		},
	}
}

func TestConfigService_Replace(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := NewConfigService(repo, &fakeMasterData{}, nopLogger{})

	require.NoError(t, svc.Replace(context.Background(), validConfig()))
	require.NotNil(t, repo.config)
	assert.Len(t, repo.config.Levels, 2)
}

func TestConfigService_Replace_StructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.ApprovalConfiguration)
	}{
		{"no levels", func(c *entity.ApprovalConfiguration) { c.Levels = nil }},
		{"gap in level indices", func(c *entity.ApprovalConfiguration) { c.Levels[1].LevelIndex = 3 }},
		{"indices not starting at 1", func(c *entity.ApprovalConfiguration) {
			c.Levels[0].LevelIndex = 2
			c.Levels[1].LevelIndex = 3
		}},
		{"gating level without approver", func(c *entity.ApprovalConfiguration) {
			c.Levels[1].ApproverID = ""
		}},
		{"department-specific level without department", func(c *entity.ApprovalConfiguration) {
			c.DepartmentSpecific = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeConfigRepo{}
			svc := NewConfigService(repo, &fakeMasterData{}, nopLogger{})

			cfg := validConfig()
			tt.mutate(cfg)

			err := svc.Replace(context.Background(), cfg)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Nil(t, repo.config)
		})
	}
}

func TestConfigService_Replace_UnknownReferences(t *testing.T) {
	repo := &fakeConfigRepo{}
	svc := NewConfigService(repo, &fakeMasterData{unknownUsers: map[string]bool{"U2": true}}, nopLogger{})

	err := svc.Replace(context.Background(), validConfig())
	assert.ErrorIs(t, err, ErrInvalidSubmission)
}

func TestConfigService_Get(t *testing.T) {
	repo := &fakeConfigRepo{config: validConfig()}
	svc := NewConfigService(repo, &fakeMasterData{}, nopLogger{})

	cfg, err := svc.Get(context.Background(), "P001", entity.DocumentTypeAppointment, entity.OperationCreate)
	require.NoError(t, err)
	assert.Len(t, cfg.Levels, 2)

	repo.config = nil
	_, err = svc.Get(context.Background(), "P001", entity.DocumentTypeAppointment, entity.OperationCreate)
	assert.ErrorIs(t, err, approval.ErrNoApprovalChain)
}
