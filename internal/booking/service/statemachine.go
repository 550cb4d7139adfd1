package service

import "github.com/staffops/staffops-backend/internal/booking/repository"

// validTransitions encodes the booking lifecycle:
// pending -> approved | rejected | cancelled. Everything else is terminal.
var validTransitions = map[string][]string{
	repository.StatusPending: {
		repository.StatusApproved,
		repository.StatusRejected,
		repository.StatusCancelled,
	},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status permits no further transitions.
func IsTerminal(status string) bool {
	return len(validTransitions[status]) == 0
}
