package model

import "fmt"

// Status is the lifecycle state of a ride request. The state machine is
// closed: PENDING -> ASSIGNED -> COMPLETED, or PENDING -> CANCELLED.
// Terminal states are final.
type Status int

const (
	StatusPending Status = iota
	StatusAssigned
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusAssigned:
		return "assigned"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusAssigned || next == StatusCancelled
	case StatusAssigned:
		return next == StatusCompleted
	default:
		return false
	}
}

// Transition returns next if the move is legal and an error otherwise.
// Illegal transitions indicate a programming error in the caller.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("illegal status transition %s -> %s", s, next)
	}
	return next, nil
}
