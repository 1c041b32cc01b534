package domain

import "snagline/domain/state"

var (
	StatePending         = state.State{Name: StatusPending}
	StateInProgress      = state.State{Name: StatusInProgress}
	StateWaitingApproval = state.State{Name: StatusWaitingApproval}
	StateApproved        = state.State{Name: StatusApproved}
)

// WorkOrderStateMachine is the lifecycle of a work order. Only "approve" and
// "reject" are exposed by the approval component; "start" and "submit" belong
// to the builder side. Rejection loops back to in_progress, there is no
// stored rejected state.
var WorkOrderStateMachine = state.NewStateMachine(
	[]state.State{StatePending, StateInProgress, StateWaitingApproval, StateApproved},
	[]state.Transition{
		{Name: "start", From: StatePending, To: StateInProgress},
		{Name: "submit", From: StateInProgress, To: StateWaitingApproval},
		{Name: "approve", From: StateWaitingApproval, To: StateApproved},
		{Name: "reject", From: StateWaitingApproval, To: StateInProgress},
	},
)
