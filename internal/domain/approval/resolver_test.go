package approval

import (
	"errors"
	"testing"

	"github.com/gatewise/gatepass/internal/domain/entity"
)

func level(index int, approver string) entity.ApprovalLevelConfig {
	return entity.ApprovalLevelConfig{LevelIndex: index, ApproverID: approver}
}

func TestResolveChain(t *testing.T) {
	doc := Document{
		PlantID:      "P001",
		DocumentType: entity.DocumentTypeAppointment,
		Operation:    entity.OperationCreate,
		HostID:       "U1",
		DepartmentID: "IT",
	}

	tests := []struct {
		name          string
		levels        []entity.ApprovalLevelConfig
		doc           Document
		wantIndices   []int
		wantApprovers []string
		wantErr       error
	}{
		{
			name:          "fixed approvers in order",
			levels:        []entity.ApprovalLevelConfig{level(1, "U10"), level(2, "U20")},
			doc:           doc,
			wantIndices:   []int{1, 2},
			wantApprovers: []string{"U10", "U20"},
		},
		{
			name:          "levels sorted by index regardless of input order",
			levels:        []entity.ApprovalLevelConfig{level(2, "U20"), level(1, "U10")},
			doc:           doc,
			wantIndices:   []int{1, 2},
			wantApprovers: []string{"U10", "U20"},
		},
		{
			name: "host substitution binds the document host",
			levels: []entity.ApprovalLevelConfig{
				{LevelIndex: 1, HostSubstitution: true},
				level(2, "U20"),
			},
			doc:           doc,
			wantIndices:   []int{1, 2},
			wantApprovers: []string{"U1", "U20"},
		},
		{
			name: "asset level skipped without assets, index gap preserved",
			levels: []entity.ApprovalLevelConfig{
				level(1, "U10"),
				{LevelIndex: 2, ApproverID: "U20", AssetBased: true},
				level(3, "U30"),
			},
			doc:           doc,
			wantIndices:   []int{1, 3},
			wantApprovers: []string{"U10", "U30"},
		},
		{
			name: "asset level kept when document carries assets",
			levels: []entity.ApprovalLevelConfig{
				level(1, "U10"),
				{LevelIndex: 2, ApproverID: "U20", AssetBased: true},
			},
			doc: Document{
				PlantID: "P001", HostID: "U1", DepartmentID: "IT", HasAssets: true,
			},
			wantIndices:   []int{1, 2},
			wantApprovers: []string{"U10", "U20"},
		},
		{
			name: "department mismatch skips the level",
			levels: []entity.ApprovalLevelConfig{
				{LevelIndex: 1, ApproverID: "U10", DepartmentID: "OPS"},
				level(2, "U20"),
			},
			doc:           doc,
			wantIndices:   []int{2},
			wantApprovers: []string{"U20"},
		},
		{
			name: "host substitution without host fails",
			levels: []entity.ApprovalLevelConfig{
				{LevelIndex: 1, HostSubstitution: true},
			},
			doc:     Document{PlantID: "P001"},
			wantErr: ErrUnresolvedApprover,
		},
		{
			name: "all levels skipped yields no chain",
			levels: []entity.ApprovalLevelConfig{
				{LevelIndex: 1, ApproverID: "U10", AssetBased: true},
			},
			doc:     doc,
			wantErr: ErrNoApprovalChain,
		},
		{
			name:    "empty configuration yields no chain",
			levels:  nil,
			doc:     doc,
			wantErr: ErrNoApprovalChain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain, err := ResolveChain(tt.levels, tt.doc)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ResolveChain() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveChain() unexpected error: %v", err)
			}

			if len(chain) != len(tt.wantIndices) {
				t.Fatalf("chain length = %d, want %d", len(chain), len(tt.wantIndices))
			}
			for i, b := range chain {
				if b.LevelIndex != tt.wantIndices[i] {
					t.Errorf("chain[%d].LevelIndex = %d, want %d", i, b.LevelIndex, tt.wantIndices[i])
				}
				if b.ApproverID != tt.wantApprovers[i] {
					t.Errorf("chain[%d].ApproverID = %s, want %s", i, b.ApproverID, tt.wantApprovers[i])
				}
			}
		})
	}
}

func TestResolveChain_DoesNotMutateInput(t *testing.T) {
	levels := []entity.ApprovalLevelConfig{level(2, "U20"), level(1, "U10")}

	_, err := ResolveChain(levels, Document{PlantID: "P001", HostID: "U1"})
	if err != nil {
		t.Fatalf("ResolveChain() unexpected error: %v", err)
	}

	if levels[0].LevelIndex != 2 || levels[1].LevelIndex != 1 {
		t.Error("ResolveChain() reordered the caller's slice")
	}
}

func TestFirstGating(t *testing.T) {
	tests := []struct {
		name  string
		chain []Binding
		want  int
	}{
		{
			name:  "first level gates",
			chain: []Binding{{LevelIndex: 1, ApproverID: "U1"}, {LevelIndex: 2, ApproverID: "U2"}},
			want:  1,
		},
		{
			name: "notification-only level skipped",
			chain: []Binding{
				{LevelIndex: 1, ApproverID: "U1", NotificationOnly: true},
				{LevelIndex: 2, ApproverID: "U2"},
			},
			want: 2,
		},
		{
			name: "all notification-only",
			chain: []Binding{
				{LevelIndex: 1, ApproverID: "U1", NotificationOnly: true},
				{LevelIndex: 2, ApproverID: "U2", NotificationOnly: true},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstGating(tt.chain); got != tt.want {
				t.Errorf("FirstGating() = %d, want %d", got, tt.want)
			}
		})
	}
}
