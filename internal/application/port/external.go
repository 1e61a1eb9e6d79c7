package port

import "context"

// MasterData exposes read-only lookups against reference data owned by the
// master-data administration screens, which are outside this service.
type MasterData interface {
	PlantExists(ctx context.Context, plantID string) (bool, error)
	DepartmentExists(ctx context.Context, departmentID string) (bool, error)
	UserExists(ctx context.Context, userID string) (bool, error)
}

// Notifier delivers fire-and-forget messages to approvers. Delivery
// failures are logged by implementations and never gate workflow
// advancement.
type Notifier interface {
	NotifyApprover(ctx context.Context, approverID string, appointmentID int64, levelIndex int, notificationOnly bool) error
}
