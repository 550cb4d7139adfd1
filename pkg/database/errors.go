package database

import (
	"strings"

	"github.com/lib/pq"
	"github.com/staffops/staffops-backend/pkg/errors"
)

// MapPQError converts a PostgreSQL error to an AppError with meaningful messages.
// Returns nil if the error is not a pq.Error.
func MapPQError(err error) *errors.AppError {
	pqErr, ok := err.(*pq.Error)
	if !ok {
		return nil
	}

	switch pqErr.Code {
	// Exclusion constraint violation (23P01). The no-overlapping-approved-bookings
	// constraint is the authoritative check; every violation here means the slot
	// was taken between the advisory check and the commit.
	case "23P01":
		return errors.BookingConflict("time slot is no longer available")

	// Check constraint violation (23514)
	case "23514":
		return mapCheckConstraint(pqErr)

	// Unique constraint violation (23505)
	case "23505":
		return errors.Conflict(formatConstraintMessage(pqErr))

	// Foreign key violation (23503)
	case "23503":
		return errors.BadRequest("referenced record does not exist")

	// Not null violation (23502)
	case "23502":
		col := pqErr.Column
		if col == "" {
			col = "required field"
		}
		return errors.Validation(map[string]string{
			col: "must not be empty",
		})

	default:
		return nil
	}
}

// IsExclusionViolation reports whether the error is a range-exclusion
// constraint violation.
func IsExclusionViolation(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23P01"
}

// mapCheckConstraint maps specific CHECK constraint names to user-friendly messages.
func mapCheckConstraint(pqErr *pq.Error) *errors.AppError {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "time_valid"):
		return errors.Validation(map[string]string{
			"end_time": "must be after start_time",
		})

	case strings.Contains(constraint, "status_valid"):
		return errors.Validation(map[string]string{
			"status": "must be one of: pending, approved, rejected, cancelled",
		})

	case strings.Contains(constraint, "capacity_positive"):
		return errors.Validation(map[string]string{
			"capacity": "must be greater than zero",
		})

	default:
		return errors.BadRequest("data validation failed: " + constraint)
	}
}

// formatConstraintMessage creates a user-friendly message for unique constraint violations.
func formatConstraintMessage(pqErr *pq.Error) string {
	constraint := pqErr.Constraint

	switch {
	case strings.Contains(constraint, "rooms_name"):
		return "a room with this name already exists"
	default:
		return "a record with these values already exists"
	}
}
