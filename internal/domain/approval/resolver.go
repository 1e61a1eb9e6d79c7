package approval

import (
	"fmt"
	"sort"

	"github.com/gatewise/gatepass/internal/domain/entity"
)

// Document carries the submission context the resolver needs: where the
// document lives, who is visited, and whether it brings tracked assets.
type Document struct {
	PlantID      string
	DocumentType string
	Operation    string
	HostID       string
	DepartmentID string
	HasAssets    bool
}

// Binding is one concrete stage of a resolved chain: the original level
// index bound to the approver who will decide it.
type Binding struct {
	LevelIndex       int
	ApproverID       string
	NotificationOnly bool
}

// ResolveChain turns the configured levels into the concrete approver
// sequence for one document. Levels are resolved exactly once per
// submission; the result is a snapshot that never tracks later
// configuration changes.
//
// Skip rules:
//   - asset-based levels are excluded when the document carries no assets
//   - department-scoped levels bind only when the document's department
//     matches
//
// Ordering follows the configured level indices; skipped levels leave gaps
// rather than being renumbered, so decision records keep auditable indices.
func ResolveChain(levels []entity.ApprovalLevelConfig, doc Document) ([]Binding, error) {
	ordered := make([]entity.ApprovalLevelConfig, len(levels))
	copy(ordered, levels)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].LevelIndex < ordered[j].LevelIndex
	})

	var chain []Binding
	for _, lvl := range ordered {
		if lvl.AssetBased && !doc.HasAssets {
			continue
		}
		if lvl.DepartmentID != "" && lvl.DepartmentID != doc.DepartmentID {
			continue
		}

		approver := lvl.ApproverID
		if lvl.HostSubstitution {
			if doc.HostID == "" {
				return nil, fmt.Errorf("level %d: %w", lvl.LevelIndex, ErrUnresolvedApprover)
			}
			approver = doc.HostID
		}

		chain = append(chain, Binding{
			LevelIndex:       lvl.LevelIndex,
			ApproverID:       approver,
			NotificationOnly: lvl.NotificationOnly,
		})
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("%s/%s/%s: %w", doc.PlantID, doc.DocumentType, doc.Operation, ErrNoApprovalChain)
	}

	return chain, nil
}

// FirstGating returns the level index of the first binding that gates
// progression, or 0 when the chain is notification-only.
func FirstGating(chain []Binding) int {
	for _, b := range chain {
		if !b.NotificationOnly {
			return b.LevelIndex
		}
	}
	return 0
}
