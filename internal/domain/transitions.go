package domain

// TransitionEvent names a lifecycle operation that moves a permit between states.
type TransitionEvent string

const (
	EventApprove  TransitionEvent = "approve"
	EventReject   TransitionEvent = "reject"
	EventActivate TransitionEvent = "activate"
	EventComplete TransitionEvent = "complete"
	EventCancel   TransitionEvent = "cancel"
)

// Transition is one legal edge of the permit state machine.
type Transition struct {
	Event TransitionEvent
	Src   PermitStatus
	Dst   PermitStatus
}

// Transitions is the full edge set of the permit lifecycle. Any status change
// outside this table is illegal; the workflow validator enforces it.
var Transitions = []Transition{
	{Event: EventApprove, Src: PermitStatusPendingApproval, Dst: PermitStatusApproved},
	{Event: EventReject, Src: PermitStatusPendingApproval, Dst: PermitStatusRejected},
	{Event: EventActivate, Src: PermitStatusApproved, Dst: PermitStatusActive},
	{Event: EventComplete, Src: PermitStatusActive, Dst: PermitStatusCompleted},
	{Event: EventCancel, Src: PermitStatusPendingApproval, Dst: PermitStatusCancelled},
	{Event: EventCancel, Src: PermitStatusApproved, Dst: PermitStatusCancelled},
	{Event: EventCancel, Src: PermitStatusActive, Dst: PermitStatusCancelled},
}
