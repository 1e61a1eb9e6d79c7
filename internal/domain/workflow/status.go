package workflow

// Status represents an approval status, used at both the level and the
// aggregate granularity of an approval instance.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusApproved:  true,
	StatusRejected:  true,
	StatusCancelled: true,
}

var terminalStatuses = map[Status]bool{
	StatusRejected:  true,
	StatusCancelled: true,
}

// IsTerminal returns true if the status short-circuits the chain. An
// approved aggregate is final too, but every level is decided by then, so
// the duplicate-decision guard covers it.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsDecided returns true once a level carries a final decision.
func (s Status) IsDecided() bool {
	return s != StatusPending
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the defined constants
func (s Status) IsValid() bool {
	return validStatuses[s]
}
