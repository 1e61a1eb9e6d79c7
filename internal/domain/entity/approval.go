package entity

import (
	"fmt"
	"time"

	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// ApprovalLevelConfig is one configured stage of an approval chain for a
// (plant, document type, operation) triple.
type ApprovalLevelConfig struct {
	ID           int64     `json:"id"`
	PlantID      string    `json:"plant_id"`
	DocumentType string    `json:"document_type"`
	Operation    string    `json:"operation"`
	LevelIndex   int       `json:"level_index"`
	DepartmentID string    `json:"department_id,omitempty"`
	ApproverID   string    `json:"approver_id,omitempty"`
	// HostSubstitution resolves the approver to the appointment's host at
	// submission time instead of a fixed user.
	HostSubstitution bool `json:"host_substitution"`
	// NotificationOnly levels are informed but never gate progression.
	NotificationOnly bool `json:"notification_only"`
	// AssetBased levels join the chain only when the document carries
	// tracked belongings.
	AssetBased bool      `json:"asset_based"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApprovalConfiguration groups the ordered level configs for one
// (plant, document type, operation) triple.
type ApprovalConfiguration struct {
	PlantID            string                `json:"plant_id"`
	DocumentType       string                `json:"document_type"`
	Operation          string                `json:"operation"`
	DepartmentSpecific bool                  `json:"department_specific"`
	Levels             []ApprovalLevelConfig `json:"levels"`
}

// Validate checks the structural invariants of a configuration: level
// indices contiguous from 1, and department bindings present on every
// non-host level when the configuration is department specific.
func (c *ApprovalConfiguration) Validate() error {
	if c.PlantID == "" || c.DocumentType == "" || c.Operation == "" {
		return fmt.Errorf("plant_id, document_type and operation are required")
	}
	if len(c.Levels) == 0 {
		return fmt.Errorf("configuration requires at least one level")
	}
	for i, lvl := range c.Levels {
		if lvl.LevelIndex != i+1 {
			return fmt.Errorf("level indices must be contiguous starting at 1, got %d at position %d", lvl.LevelIndex, i)
		}
		if !lvl.HostSubstitution && lvl.ApproverID == "" {
			return fmt.Errorf("level %d requires an approver", lvl.LevelIndex)
		}
		if c.DepartmentSpecific && !lvl.HostSubstitution && lvl.DepartmentID == "" {
			return fmt.Errorf("level %d requires a department in a department-specific configuration", lvl.LevelIndex)
		}
	}
	return nil
}

// ApprovalInstance is one submission of a document through its resolved
// approval chain. The level snapshot is immutable after resolution; only
// decisions and the aggregate state change.
type ApprovalInstance struct {
	ID            int64           `json:"id"`
	AppointmentID int64           `json:"appointment_id"`
	PlantID       string          `json:"plant_id"`
	DocumentType  string          `json:"document_type"`
	Operation     string          `json:"operation"`
	Aggregate     workflow.Status `json:"aggregate_status"`
	// ActiveLevelIndex is the level currently awaiting a decision, 0 when
	// the chain has run to completion.
	ActiveLevelIndex int             `json:"active_level_index"`
	Levels           []LevelDecision `json:"levels"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// Level returns the decision record for the given original level index.
func (i *ApprovalInstance) Level(levelIndex int) *LevelDecision {
	for idx := range i.Levels {
		if i.Levels[idx].LevelIndex == levelIndex {
			return &i.Levels[idx]
		}
	}
	return nil
}

// NextGatingLevel returns the index of the first undecided non-notification
// level strictly after the given index, or 0 if none remain.
func (i *ApprovalInstance) NextGatingLevel(after int) int {
	for idx := range i.Levels {
		lvl := &i.Levels[idx]
		if lvl.LevelIndex > after && !lvl.NotificationOnly && lvl.Decision == workflow.StatusPending {
			return lvl.LevelIndex
		}
	}
	return 0
}

// LevelDecision is the resolved binding and decision record for one level
// of an instance. LevelIndex keeps the original configured index even when
// earlier levels were skipped at resolution time.
type LevelDecision struct {
	ID               int64           `json:"id"`
	InstanceID       int64           `json:"instance_id"`
	LevelIndex       int             `json:"level_index"`
	ApproverID       string          `json:"approver_id"`
	NotificationOnly bool            `json:"notification_only"`
	Decision         workflow.Status `json:"decision"`
	Comment          string          `json:"comment,omitempty"`
	DecidedAt        *time.Time      `json:"decided_at,omitempty"`
}
