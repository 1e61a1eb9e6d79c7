package event

// Type identifies the type of domain event
type Type string

const (
	TypeInstanceCreated Type = "workflow.instance_created"
	TypeStatusChanged   Type = "workflow.status_changed"
	TypePassTypeChanged Type = "workflow.pass_type_changed"
	TypeLevelActivated  Type = "workflow.level_activated"
	TypeCheckedIn       Type = "appointment.checked_in"
	TypeCheckedOut      Type = "appointment.checked_out"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeInstanceCreated,
		TypeStatusChanged,
		TypePassTypeChanged,
		TypeLevelActivated,
		TypeCheckedIn,
		TypeCheckedOut:
		return true
	default:
		return false
	}
}
