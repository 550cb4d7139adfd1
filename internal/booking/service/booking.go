package service

import (
	"context"
	"strings"
	"time"

	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/pkg/actor"
	"github.com/staffops/staffops-backend/pkg/capability"
	"github.com/staffops/staffops-backend/pkg/errors"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/timerange"
)

// Status sets used for conflict checks. Submission only needs to avoid
// approved bookings; approval is a stronger commitment and must also surface
// pending bookings that would collide if approved later.
var (
	submissionBlockers = []string{repository.StatusApproved}
	approvalBlockers   = []string{repository.StatusApproved, repository.StatusPending}
)

// EventPublisher publishes booking change events.
type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, booking *repository.Booking)
	PublishBookingApproved(ctx context.Context, booking *repository.Booking, reviewerID string)
	PublishBookingRejected(ctx context.Context, booking *repository.Booking, reviewerID string)
	PublishBookingCancelled(ctx context.Context, booking *repository.Booking)
}

// BookingService orchestrates the submission and approval workflows.
//
// Every conflict check here is advisory: the pre-checks catch most collisions
// before a round trip, but the database exclusion constraint on approved
// bookings is the authoritative rule, and a commit-time BOOKING_CONFLICT is
// an expected, recoverable outcome.
type BookingService struct {
	bookingRepo *repository.BookingRepository
	roomRepo    *repository.RoomRepository
	publisher   EventPublisher
	logger      *logger.Logger
	now         func() time.Time
}

// Option configures a BookingService
type Option func(*BookingService)

// WithClock overrides the time source used for past-start validation.
// Tests use this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *BookingService) {
		s.now = now
	}
}

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo *repository.BookingRepository,
	roomRepo *repository.RoomRepository,
	publisher EventPublisher,
	log *logger.Logger,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		bookingRepo: bookingRepo,
		roomRepo:    roomRepo,
		publisher:   publisher,
		logger:      log,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits a new booking request in pending state. When the advisory
// check finds approved bookings overlapping the requested interval, they are
// returned alongside a BOOKING_CONFLICT error so the caller can show why the
// slot is unavailable.
func (s *BookingService) Create(ctx context.Context, booking *repository.Booking) ([]*repository.ConflictingBooking, error) {
	a := actor.FromContext(ctx)
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if !capability.Can(a.Role, capability.ActionBookingCreate) {
		return nil, errors.Forbidden("role cannot create bookings")
	}
	booking.RequesterID = a.ID

	if strings.TrimSpace(booking.Title) == "" {
		return nil, errors.Validation(map[string]string{"title": "this field is required"})
	}
	if _, err := timerange.New(booking.StartTime, booking.EndTime); err != nil {
		return nil, errors.Validation(map[string]string{"end_time": "must be after start_time"})
	}
	if booking.StartTime.Before(s.now()) {
		return nil, errors.Validation(map[string]string{"start_time": "must not be in the past"})
	}

	room, err := s.roomRepo.GetByID(ctx, booking.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, errors.Validation(map[string]string{"room_id": "room is not available for booking"})
	}

	conflicts, err := s.bookingRepo.CheckConflicts(ctx, booking.RoomID, booking.StartTime, booking.EndTime, nil, submissionBlockers)
	if err != nil {
		return nil, errors.Unavailable("availability check failed", err)
	}
	if len(conflicts) > 0 {
		return conflicts, errors.BookingConflict("requested time overlaps an approved booking")
	}

	booking.Status = repository.StatusPending
	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, err
	}

	s.publisher.PublishBookingCreated(ctx, booking)

	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("room_id", booking.RoomID).
		Str("requester_id", booking.RequesterID).
		Time("start_time", booking.StartTime).
		Time("end_time", booking.EndTime).
		Msg("booking created")

	return nil, nil
}

// GetByID gets a booking by ID
func (s *BookingService) GetByID(ctx context.Context, id string) (*repository.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

// List lists bookings with filters
func (s *BookingService) List(ctx context.Context, params repository.BookingListParams) ([]*repository.Booking, int64, error) {
	return s.bookingRepo.List(ctx, params)
}

// CheckAvailability runs the conflict check for a candidate interval without
// mutating anything. A repository failure propagates as UNAVAILABLE, never as
// an empty result.
func (s *BookingService) CheckAvailability(ctx context.Context, roomID string, start, end time.Time, excludeID *string, includePending bool) ([]*repository.ConflictingBooking, error) {
	if _, err := timerange.New(start, end); err != nil {
		return nil, errors.Validation(map[string]string{"end_time": "must be after start_time"})
	}

	blockers := submissionBlockers
	if includePending {
		blockers = approvalBlockers
	}

	conflicts, err := s.bookingRepo.CheckConflicts(ctx, roomID, start, end, excludeID, blockers)
	if err != nil {
		return nil, errors.Unavailable("availability check failed", err)
	}

	return conflicts, nil
}

// Approve approves a pending booking. The pre-approval check considers both
// approved and pending bookings, excluding the booking itself; if any
// conflict exists the approval is refused and the conflicting set returned,
// so reviewers never end up with two pending bookings where approving the
// first silently dooms the second. A conflicting approval that slips past
// the check is still rejected atomically by the exclusion constraint.
func (s *BookingService) Approve(ctx context.Context, id string) ([]*repository.ConflictingBooking, error) {
	a := actor.FromContext(ctx)
	if a == nil {
		return nil, errors.Unauthorized("authentication required")
	}
	if !capability.Can(a.Role, capability.ActionBookingApprove) {
		return nil, errors.Forbidden("role cannot approve bookings")
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(booking.Status, repository.StatusApproved) {
		return nil, errors.Conflict("only pending bookings can be approved")
	}

	conflicts, err := s.bookingRepo.CheckConflicts(ctx, booking.RoomID, booking.StartTime, booking.EndTime, &booking.ID, approvalBlockers)
	if err != nil {
		return nil, errors.Unavailable("availability check failed", err)
	}
	if len(conflicts) > 0 {
		return conflicts, errors.BookingConflict("conflicting bookings must be resolved before approval")
	}

	if err := s.bookingRepo.Approve(ctx, id, a.ID); err != nil {
		return nil, err
	}

	booking.Status = repository.StatusApproved
	s.publisher.PublishBookingApproved(ctx, booking, a.ID)

	s.logger.Info().
		Str("booking_id", id).
		Str("reviewer_id", a.ID).
		Msg("booking approved")

	return nil, nil
}

// Reject rejects a pending booking with an optional reason. Rejection is
// always permitted for reviewers, conflicts or not.
func (s *BookingService) Reject(ctx context.Context, id string, reason *string) error {
	a := actor.FromContext(ctx)
	if a == nil {
		return errors.Unauthorized("authentication required")
	}
	if !capability.Can(a.Role, capability.ActionBookingReject) {
		return errors.Forbidden("role cannot reject bookings")
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(booking.Status, repository.StatusRejected) {
		return errors.Conflict("only pending bookings can be rejected")
	}

	if err := s.bookingRepo.Reject(ctx, id, a.ID, reason); err != nil {
		return err
	}

	booking.Status = repository.StatusRejected
	s.publisher.PublishBookingRejected(ctx, booking, a.ID)

	s.logger.Info().
		Str("booking_id", id).
		Str("reviewer_id", a.ID).
		Msg("booking rejected")

	return nil
}

// Cancel cancels a pending booking. Only the requester may cancel, and only
// while the booking is still pending; the repository enforces both in the
// guarded update so the rule holds under concurrent transitions.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	a := actor.FromContext(ctx)
	if a == nil {
		return errors.Unauthorized("authentication required")
	}
	if !capability.Can(a.Role, capability.ActionBookingCancel) {
		return errors.Forbidden("role cannot cancel bookings")
	}

	if err := s.bookingRepo.Cancel(ctx, id, a.ID); err != nil {
		return err
	}

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	s.publisher.PublishBookingCancelled(ctx, booking)

	s.logger.Info().
		Str("booking_id", id).
		Str("requester_id", a.ID).
		Msg("booking cancelled")

	return nil
}
