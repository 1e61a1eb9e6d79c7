package approval

import "errors"

var (
	// ErrNoApprovalChain is returned when zero levels resolve for a triple
	// that requires approval.
	ErrNoApprovalChain = errors.New("no approval chain configured")

	// ErrUnresolvedApprover is returned when a host-substituted level has
	// no host to bind to.
	ErrUnresolvedApprover = errors.New("approver could not be resolved")

	// ErrNotAuthorized is returned when the caller is not the resolved
	// approver for the level.
	ErrNotAuthorized = errors.New("caller is not the approver for this level")

	// ErrLevelNotActive is returned for a decision on a level that is not
	// the current decision point.
	ErrLevelNotActive = errors.New("level is not the active decision point")

	// ErrLevelAlreadyDecided is returned for a duplicate decision.
	ErrLevelAlreadyDecided = errors.New("level already carries a decision")

	// ErrLevelNotActionable is returned for a decision on a
	// notification-only level.
	ErrLevelNotActionable = errors.New("notification-only level does not accept decisions")

	// ErrInstanceTerminal is returned for a decision on an instance whose
	// aggregate status is already rejected or cancelled.
	ErrInstanceTerminal = errors.New("approval instance is already terminal")

	// ErrInstanceStale is returned when a conditional update lost against a
	// concurrent transition on the same instance.
	ErrInstanceStale = errors.New("approval instance changed concurrently")

	// ErrInstanceNotFound is returned when no instance exists for the
	// given identifier.
	ErrInstanceNotFound = errors.New("approval instance not found")

	// ErrInvalidDecision is returned when the submitted decision is neither
	// an approval nor a rejection.
	ErrInvalidDecision = errors.New("decision must be APPROVED or REJECTED")
)
