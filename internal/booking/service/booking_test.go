package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/internal/booking/service"
	"github.com/staffops/staffops-backend/pkg/capability"
	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/errors"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/messaging"
	"github.com/staffops/staffops-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DATA-DOG/go-sqlmock"
)

// fakePublisher records published event types for verification
type fakePublisher struct {
	events []string
}

func (f *fakePublisher) PublishBookingCreated(ctx context.Context, booking *repository.Booking) {
	f.events = append(f.events, messaging.EventBookingCreated)
}

func (f *fakePublisher) PublishBookingApproved(ctx context.Context, booking *repository.Booking, reviewerID string) {
	f.events = append(f.events, messaging.EventBookingApproved)
}

func (f *fakePublisher) PublishBookingRejected(ctx context.Context, booking *repository.Booking, reviewerID string) {
	f.events = append(f.events, messaging.EventBookingRejected)
}

func (f *fakePublisher) PublishBookingCancelled(ctx context.Context, booking *repository.Booking) {
	f.events = append(f.events, messaging.EventBookingCancelled)
}

func newTestService(t *testing.T, opts ...service.Option) (*service.BookingService, *testutil.MockDB, *fakePublisher) {
	mockDB := testutil.NewMockDB(t)
	log := logger.New("test", "test")
	db := database.FromSqlx(mockDB.DB, log)

	pub := &fakePublisher{}
	svc := service.NewBookingService(
		repository.NewBookingRepository(db),
		repository.NewRoomRepository(db),
		pub,
		log,
		opts...,
	)
	return svc, mockDB, pub
}

func roomRows(id string, active bool) *sqlmock.Rows {
	return testutil.MockRows("id", "name", "capacity", "is_active", "created_at", "updated_at").
		AddRow(id, "Room A", 8, active, time.Now(), time.Now())
}

func conflictRows() *sqlmock.Rows {
	return testutil.MockRows("id", "title", "room_id", "start_time", "end_time", "status", "room_name", "requester_name")
}

func appErrCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Code
}

func futureInterval() (time.Time, time.Time) {
	start := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	return start, start.Add(time.Hour)
}

func TestBookingService_Create_RequiresAuthentication(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	start, end := futureInterval()
	_, err := svc.Create(context.Background(), &repository.Booking{
		Title:     "Standup",
		RoomID:    uuid.New().String(),
		StartTime: start,
		EndTime:   end,
	})

	assert.Equal(t, "UNAUTHORIZED", appErrCode(t, err))
}

func TestBookingService_Create_RejectsDegenerateInterval(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	start, _ := futureInterval()

	_, err := svc.Create(ctx, &repository.Booking{
		Title:     "Standup",
		RoomID:    uuid.New().String(),
		StartTime: start,
		EndTime:   start,
	})

	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
	mockDB.ExpectationsWereMet(t)
}

func TestBookingService_Create_RejectsPastStart(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc, mockDB, _ := newTestService(t, service.WithClock(func() time.Time { return now }))
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	start := now.Add(-2 * time.Hour)

	_, err := svc.Create(ctx, &repository.Booking{
		Title:     "Standup",
		RoomID:    uuid.New().String(),
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	})

	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
}

func TestBookingService_Create_RejectsInactiveRoom(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM rooms").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, false))

	_, err := svc.Create(ctx, &repository.Booking{
		Title:     "Standup",
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
	})

	assert.Equal(t, "VALIDATION_ERROR", appErrCode(t, err))
	assert.Empty(t, pub.events)
}

func TestBookingService_Create_ReturnsConflictingBookings(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM rooms").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, true))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnRows(conflictRows().
			AddRow(uuid.New().String(), "Quarterly review", roomID, start, end, "approved", "Room A", "Dana"))

	conflicts, err := svc.Create(ctx, &repository.Booking{
		Title:     "Standup",
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
	})

	assert.Equal(t, "BOOKING_CONFLICT", appErrCode(t, err))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "Quarterly review", conflicts[0].Title)
	assert.Empty(t, pub.events)
}

func TestBookingService_Create_AvailabilityFailureIsNotTreatedAsFree(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM rooms").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, true))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnError(assert.AnError)

	conflicts, err := svc.Create(ctx, &repository.Booking{
		Title:     "Standup",
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
	})

	assert.Equal(t, "UNAVAILABLE", appErrCode(t, err))
	assert.Nil(t, conflicts)
	assert.Empty(t, pub.events)
}

func TestBookingService_Create_Succeeds(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, a := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM rooms").
		WithArgs(roomID).
		WillReturnRows(roomRows(roomID, true))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnRows(conflictRows())
	mockDB.Mock.ExpectQuery("INSERT INTO bookings").
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	booking := &repository.Booking{
		Title:     "Standup",
		RoomID:    roomID,
		StartTime: start,
		EndTime:   end,
	}
	conflicts, err := svc.Create(ctx, booking)

	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, repository.StatusPending, booking.Status)
	assert.Equal(t, a.ID, booking.RequesterID)
	assert.Equal(t, []string{messaging.EventBookingCreated}, pub.events)
	mockDB.ExpectationsWereMet(t)
}

func bookingRow(id, roomID, requesterID, status string, start, end time.Time) *sqlmock.Rows {
	return testutil.MockRows(
		"id", "title", "description", "room_id", "requester_id",
		"start_time", "end_time", "status", "attendees",
		"reviewed_by", "reviewed_at", "rejection_reason",
		"created_at", "updated_at", "room_name", "requester_name",
	).AddRow(
		id, "Standup", nil, roomID, requesterID,
		start, end, status, "{}",
		nil, nil, nil,
		time.Now(), time.Now(), "Room A", "Dana",
	)
}

func TestBookingService_Approve_RequiresReviewerCapability(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleStaff)

	_, err := svc.Approve(ctx, uuid.New().String())

	assert.Equal(t, "FORBIDDEN", appErrCode(t, err))
}

func TestBookingService_Approve_OnlyPendingBookings(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleLeader)
	id := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, uuid.New().String(), uuid.New().String(), repository.StatusRejected, start, end))

	_, err := svc.Approve(ctx, id)

	assert.Equal(t, "CONFLICT", appErrCode(t, err))
	assert.Empty(t, pub.events)
}

func TestBookingService_Approve_BlocksOnPendingOverlap(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleLeader)
	id := uuid.New().String()
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, roomID, uuid.New().String(), repository.StatusPending, start, end))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnRows(conflictRows().
			AddRow(uuid.New().String(), "Competing request", roomID, start, end, "pending", "Room A", "Sam"))

	conflicts, err := svc.Approve(ctx, id)

	assert.Equal(t, "BOOKING_CONFLICT", appErrCode(t, err))
	require.Len(t, conflicts, 1)
	assert.Equal(t, "pending", conflicts[0].Status)
	assert.Empty(t, pub.events)
}

func TestBookingService_Approve_Succeeds(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleLeader)
	id := uuid.New().String()
	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, roomID, uuid.New().String(), repository.StatusPending, start, end))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnRows(conflictRows())
	mockDB.Mock.ExpectExec("UPDATE bookings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	conflicts, err := svc.Approve(ctx, id)

	require.NoError(t, err)
	assert.Empty(t, conflicts)
	assert.Equal(t, []string{messaging.EventBookingApproved}, pub.events)
	mockDB.ExpectationsWereMet(t)
}

func TestBookingService_Reject_OnlyPendingBookings(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleLeader)
	id := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, uuid.New().String(), uuid.New().String(), repository.StatusCancelled, start, end))

	err := svc.Reject(ctx, id, nil)

	assert.Equal(t, "CONFLICT", appErrCode(t, err))
}

func TestBookingService_Reject_Succeeds(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, _ := testutil.WithTestActor(context.Background(), capability.RoleLeader)
	id := uuid.New().String()
	start, end := futureInterval()
	reason := "room reserved for maintenance"

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, uuid.New().String(), uuid.New().String(), repository.StatusPending, start, end))
	mockDB.Mock.ExpectExec("UPDATE bookings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.Reject(ctx, id, &reason)

	require.NoError(t, err)
	assert.Equal(t, []string{messaging.EventBookingRejected}, pub.events)
}

func TestBookingService_Cancel_Succeeds(t *testing.T) {
	svc, mockDB, pub := newTestService(t)
	defer mockDB.Close()

	ctx, a := testutil.WithTestActor(context.Background(), capability.RoleStaff)
	id := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectExec("UPDATE bookings SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("FROM bookings b").
		WithArgs(id).
		WillReturnRows(bookingRow(id, uuid.New().String(), a.ID, repository.StatusCancelled, start, end))

	err := svc.Cancel(ctx, id)

	require.NoError(t, err)
	assert.Equal(t, []string{messaging.EventBookingCancelled}, pub.events)
}

func TestBookingService_CheckAvailability_PropagatesQueryFailure(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnError(assert.AnError)

	conflicts, err := svc.CheckAvailability(context.Background(), uuid.New().String(), start, end, nil, false)

	assert.Equal(t, "UNAVAILABLE", appErrCode(t, err))
	assert.Nil(t, conflicts)
}

func TestBookingService_CheckAvailability_IncludesPendingWhenAsked(t *testing.T) {
	svc, mockDB, _ := newTestService(t)
	defer mockDB.Close()

	roomID := uuid.New().String()
	start, end := futureInterval()

	mockDB.Mock.ExpectQuery("FROM bookings b").
		WillReturnRows(conflictRows().
			AddRow(uuid.New().String(), "Pending request", roomID, start, end, "pending", "Room A", "Sam"))

	conflicts, err := svc.CheckAvailability(context.Background(), roomID, start, end, nil, true)

	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "pending", conflicts[0].Status)
}
