package domain

import "fmt"

// ValidationError reports malformed or missing caller input. No mutation has
// taken place when it is returned.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError from a format string.
func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown permit id.
type NotFoundError struct {
	PermitID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("permit %s not found", e.PermitID)
}

// ForbiddenError reports a caller role outside the allowed set for an operation.
type ForbiddenError struct {
	Role      Role
	Operation string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("role %s may not perform %s", e.Role, e.Operation)
}

// InvalidTransitionError reports an operation that is not legal from the
// permit's current status.
type InvalidTransitionError struct {
	Event   TransitionEvent
	Current PermitStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a permit in status %s", e.Event, e.Current)
}

// ConflictError reports that the store observed a concurrent modification
// between the engine's read and its conditional write.
type ConflictError struct {
	PermitID string
	Expected PermitStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("permit %s was modified concurrently (expected status %s)", e.PermitID, e.Expected)
}
