package approval

import (
	"fmt"

	"github.com/gatewise/gatepass/internal/domain/entity"
	"github.com/gatewise/gatepass/internal/domain/workflow"
)

// PolicyTable maps a visitor risk class to the pass color issued when the
// chain approves. The table is master data; the policy only guarantees the
// mapped values are valid colors and the lookup is deterministic.
type PolicyTable map[string]entity.PassType

// Validate rejects tables that map a class to anything other than a color.
func (t PolicyTable) Validate() error {
	for class, pass := range t {
		if !pass.IsGranted() {
			return fmt.Errorf("risk class %q maps to %q, want one of RED, YELLOW, PURPLE", class, pass)
		}
	}
	return nil
}

// IssuePass derives the appointment pass type from the aggregate approval
// status. Pure and idempotent: identical inputs always yield the same pass.
//
// An approved chain never yields PENDING or REJECT; an unmapped risk class
// falls back to YELLOW rather than blocking an approved visit.
func IssuePass(status workflow.Status, riskClass string, table PolicyTable) entity.PassType {
	switch status {
	case workflow.StatusApproved:
		if pass, ok := table[riskClass]; ok {
			return pass
		}
		return entity.PassYellow
	case workflow.StatusRejected, workflow.StatusCancelled:
		return entity.PassReject
	default:
		return entity.PassPending
	}
}
