package approval

import (
	"testing"

	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

func TestIssuePass(t *testing.T) {
	table := PolicyTable{
		entity.RiskClassGeneral:    entity.PassYellow,
		entity.RiskClassContractor: entity.PassPurple,
		entity.RiskClassRestricted: entity.PassRed,
	}

	tests := []struct {
		name      string
		status    workflow.Status
		riskClass string
		want      entity.PassType
	}{
		{"approved general", workflow.StatusApproved, entity.RiskClassGeneral, entity.PassYellow},
		{"approved contractor", workflow.StatusApproved, entity.RiskClassContractor, entity.PassPurple},
		{"approved restricted", workflow.StatusApproved, entity.RiskClassRestricted, entity.PassRed},
		{"approved unmapped class falls back to yellow", workflow.StatusApproved, "UNKNOWN", entity.PassYellow},
		{"rejected", workflow.StatusRejected, entity.RiskClassGeneral, entity.PassReject},
		{"cancelled", workflow.StatusCancelled, entity.RiskClassGeneral, entity.PassReject},
		{"pending", workflow.StatusPending, entity.RiskClassGeneral, entity.PassPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IssuePass(tt.status, tt.riskClass, table)
			if got != tt.want {
				t.Errorf("IssuePass(%s, %s) = %s, want %s", tt.status, tt.riskClass, got, tt.want)
			}
			// Same inputs, same pass.
			if again := IssuePass(tt.status, tt.riskClass, table); again != got {
				t.Errorf("IssuePass() not deterministic: %s then %s", got, again)
			}
		})
	}
}

func TestPolicyTable_Validate(t *testing.T) {
	valid := PolicyTable{entity.RiskClassGeneral: entity.PassYellow}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}

	invalid := PolicyTable{entity.RiskClassGeneral: entity.PassReject}
	if err := invalid.Validate(); err == nil {
		t.Error("Validate() accepted a non-color mapping")
	}
}
