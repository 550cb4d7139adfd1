package repository

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/errors"
)

// Booking statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

// Booking represents a room reservation with an approval lifecycle.
// The interval is half-open: [StartTime, EndTime).
type Booking struct {
	ID              string         `db:"id" json:"id"`
	Title           string         `db:"title" json:"title"`
	Description     *string        `db:"description" json:"description,omitempty"`
	RoomID          string         `db:"room_id" json:"room_id"`
	RequesterID     string         `db:"requester_id" json:"requester_id"`
	StartTime       time.Time      `db:"start_time" json:"start_time"`
	EndTime         time.Time      `db:"end_time" json:"end_time"`
	Status          string         `db:"status" json:"status"`
	Attendees       pq.StringArray `db:"attendees" json:"attendees,omitempty"`
	ReviewedBy      *string        `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `db:"reviewed_at" json:"reviewed_at,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`

	// Joined fields (populated by specific queries)
	RoomName      *string `db:"room_name" json:"room_name,omitempty"`
	RequesterName *string `db:"requester_name" json:"requester_name,omitempty"`
}

// ConflictingBooking is a projection of a booking that blocks a candidate
// interval, enriched for display. It is derived, never persisted.
type ConflictingBooking struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	RoomID        string    `db:"room_id" json:"room_id"`
	StartTime     time.Time `db:"start_time" json:"start_time"`
	EndTime       time.Time `db:"end_time" json:"end_time"`
	Status        string    `db:"status" json:"status"`
	RoomName      string    `db:"room_name" json:"room_name"`
	RequesterName string    `db:"requester_name" json:"requester_name"`
}

// BookingListParams holds parameters for listing bookings
type BookingListParams struct {
	RoomID      *string
	RequesterID *string
	Status      *string
	From        *time.Time
	To          *time.Time
	Page        int
	PerPage     int
}

// BookingRepository handles booking persistence
type BookingRepository struct {
	db *database.DB
}

// NewBookingRepository creates a new booking repository
func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

const bookingColumns = `
	b.id, b.title, b.description, b.room_id, b.requester_id,
	b.start_time, b.end_time, b.status, b.attendees,
	b.reviewed_by, b.reviewed_at, b.rejection_reason,
	b.created_at, b.updated_at,
	r.name AS room_name,
	p.display_name AS requester_name`

const bookingJoins = `
	FROM bookings b
	JOIN rooms r ON b.room_id = r.id
	LEFT JOIN profiles p ON b.requester_id = p.id`

// Create inserts a new booking. Status defaults to pending; the store
// enforces start_time < end_time via a CHECK constraint.
func (r *BookingRepository) Create(ctx context.Context, booking *Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Status == "" {
		booking.Status = StatusPending
	}
	if booking.Attendees == nil {
		booking.Attendees = pq.StringArray{}
	}

	query := `
		INSERT INTO bookings (
			id, title, description, room_id, requester_id,
			start_time, end_time, status, attendees
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		booking.ID, booking.Title, booking.Description, booking.RoomID, booking.RequesterID,
		booking.StartTime, booking.EndTime, booking.Status, booking.Attendees,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a booking by ID, joined with room and requester display names
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var booking Booking

	query := `SELECT ` + bookingColumns + bookingJoins + ` WHERE b.id = $1`

	err := r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("booking")
	}
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// List lists bookings with filters
func (r *BookingRepository) List(ctx context.Context, params BookingListParams) ([]*Booking, int64, error) {
	whereClause := " WHERE 1=1"
	args := []interface{}{}

	if params.RoomID != nil {
		args = append(args, *params.RoomID)
		whereClause += " AND b.room_id = $" + strconv.Itoa(len(args))
	}
	if params.RequesterID != nil {
		args = append(args, *params.RequesterID)
		whereClause += " AND b.requester_id = $" + strconv.Itoa(len(args))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		whereClause += " AND b.status = $" + strconv.Itoa(len(args))
	}
	// Time filters use the same half-open overlap rule as the conflict check
	if params.To != nil {
		args = append(args, *params.To)
		whereClause += " AND b.start_time < $" + strconv.Itoa(len(args))
	}
	if params.From != nil {
		args = append(args, *params.From)
		whereClause += " AND b.end_time > $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM bookings b" + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	if params.PerPage <= 0 {
		params.PerPage = 50
	}
	if params.Page <= 0 {
		params.Page = 1
	}
	offset := (params.Page - 1) * params.PerPage

	args = append(args, params.PerPage)
	limitArg := strconv.Itoa(len(args))
	args = append(args, offset)
	offsetArg := strconv.Itoa(len(args))

	query := `SELECT ` + bookingColumns + bookingJoins + whereClause + `
		ORDER BY b.start_time
		LIMIT $` + limitArg + ` OFFSET $` + offsetArg

	var bookings []*Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// CheckConflicts returns every booking on the room whose status is in the
// given set and whose half-open interval overlaps [start, end), ordered by
// start time and enriched with room and requester names. excludeID skips a
// booking being checked against itself during approval.
//
// A query failure is returned as an error and must never be read as "no
// conflicts": an empty slice with a nil error is the only available signal.
func (r *BookingRepository) CheckConflicts(ctx context.Context, roomID string, start, end time.Time, excludeID *string, statuses []string) ([]*ConflictingBooking, error) {
	query := `
		SELECT b.id, b.title, b.room_id, b.start_time, b.end_time, b.status,
		       r.name AS room_name,
		       COALESCE(p.display_name, 'unknown') AS requester_name
		FROM bookings b
		JOIN rooms r ON b.room_id = r.id
		LEFT JOIN profiles p ON b.requester_id = p.id
		WHERE b.room_id = $1
		  AND b.status = ANY($2)
		  AND b.start_time < $4
		  AND b.end_time > $3
	`
	args := []interface{}{roomID, pq.Array(statuses), start, end}

	if excludeID != nil {
		query += " AND b.id != $5"
		args = append(args, *excludeID)
	}

	query += " ORDER BY b.start_time"

	conflicts := []*ConflictingBooking{}
	if err := r.db.SelectContext(ctx, &conflicts, query, args...); err != nil {
		return nil, err
	}

	return conflicts, nil
}

// Approve transitions a pending booking to approved, recording the reviewer.
// The update is guarded on status so concurrent reviewers cannot double-apply,
// and the exclusion constraint rejects it atomically if an overlapping
// approved booking was committed in the meantime.
func (r *BookingRepository) Approve(ctx context.Context, id, reviewerID string) error {
	query := `
		UPDATE bookings SET
			status = $2, reviewed_by = $3, reviewed_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status = $4
	`
	result, err := r.db.ExecContext(ctx, query, id, StatusApproved, reviewerID, StatusPending)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return r.checkTransitionApplied(ctx, result, id)
}

// Reject transitions a pending booking to rejected with an optional reason.
func (r *BookingRepository) Reject(ctx context.Context, id, reviewerID string, reason *string) error {
	query := `
		UPDATE bookings SET
			status = $2, reviewed_by = $3, reviewed_at = NOW(),
			rejection_reason = $4, updated_at = NOW()
		WHERE id = $1 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query, id, StatusRejected, reviewerID, reason, StatusPending)
	if err != nil {
		return err
	}

	return r.checkTransitionApplied(ctx, result, id)
}

// Cancel transitions a pending booking to cancelled. Only the requester may
// cancel; ownership is checked in the query so the guard holds under races.
func (r *BookingRepository) Cancel(ctx context.Context, id, requesterID string) error {
	query := `
		UPDATE bookings SET
			status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3 AND requester_id = $4
	`
	result, err := r.db.ExecContext(ctx, query, id, StatusCancelled, StatusPending, requesterID)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		booking, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if booking.RequesterID != requesterID {
			return errors.Forbidden("only the requester can cancel a booking")
		}
		return errors.Conflict("only pending bookings can be cancelled")
	}

	return nil
}

// checkTransitionApplied distinguishes "booking missing" from "booking not
// pending" when a guarded status update touched no rows.
func (r *BookingRepository) checkTransitionApplied(ctx context.Context, result sql.Result, id string) error {
	affected, _ := result.RowsAffected()
	if affected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return errors.Conflict("booking is no longer pending")
}

