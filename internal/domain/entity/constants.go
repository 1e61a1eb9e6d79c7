package entity

// PassType is the access classification granted to an appointment once
// its approval chain resolves.
type PassType string

const (
	PassPending PassType = "PENDING"
	PassRed     PassType = "RED"
	PassYellow  PassType = "YELLOW"
	PassPurple  PassType = "PURPLE"
	PassReject  PassType = "REJECT"
)

// String returns the string representation of the pass type
func (p PassType) String() string {
	return string(p)
}

// IsGranted returns true if the pass permits gate entry.
func (p PassType) IsGranted() bool {
	switch p {
	case PassRed, PassYellow, PassPurple:
		return true
	default:
		return false
	}
}

// Document type constants
const (
	DocumentTypeAppointment = "APPOINTMENT"
	DocumentTypeGatePass    = "GATE_PASS"
)

// Operation constants for approval configurations
const (
	OperationCreate = "CREATE"
	OperationExtend = "EXTEND"
	OperationCancel = "CANCEL"
)

// Visitor risk class constants. Master data may define further classes;
// the pass policy table maps each class to a pass color.
const (
	RiskClassGeneral    = "GENERAL"
	RiskClassContractor = "CONTRACTOR"
	RiskClassRestricted = "RESTRICTED"
)
