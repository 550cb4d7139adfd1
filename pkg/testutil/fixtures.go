package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RoomFixture represents test room data
type RoomFixture struct {
	ID       string
	Name     string
	Capacity int
	IsActive bool
}

// ProfileFixture represents test profile data
type ProfileFixture struct {
	ID          string
	Email       string
	DisplayName string
	Role        string
}

// BookingFixture represents test booking data
type BookingFixture struct {
	ID          string
	Title       string
	RoomID      string
	RequesterID string
	StartTime   time.Time
	EndTime     time.Time
	Status      string
}

// FixtureFactory creates test fixtures with sensible defaults
type FixtureFactory struct {
	sequence int
}

// NewFixtureFactory creates a new fixture factory
func NewFixtureFactory() *FixtureFactory {
	return &FixtureFactory{sequence: 0}
}

// nextSeq returns the next sequence number for unique values
func (f *FixtureFactory) nextSeq() int {
	f.sequence++
	return f.sequence
}

// Room creates a room fixture with defaults
func (f *FixtureFactory) Room(opts ...func(*RoomFixture)) RoomFixture {
	seq := f.nextSeq()

	room := RoomFixture{
		ID:       uuid.New().String(),
		Name:     fmt.Sprintf("Room %d", seq),
		Capacity: 8,
		IsActive: true,
	}

	for _, opt := range opts {
		opt(&room)
	}
	return room
}

// Profile creates a profile fixture with defaults
func (f *FixtureFactory) Profile(opts ...func(*ProfileFixture)) ProfileFixture {
	seq := f.nextSeq()

	profile := ProfileFixture{
		ID:          uuid.New().String(),
		Email:       fmt.Sprintf("user%d@test.staffops.io", seq),
		DisplayName: fmt.Sprintf("Test User %d", seq),
		Role:        "staff",
	}

	for _, opt := range opts {
		opt(&profile)
	}
	return profile
}

// Booking creates a booking fixture with defaults. The interval starts an
// hour from now and lasts one hour, offset by the sequence number so
// consecutive fixtures never overlap unless the test asks them to.
func (f *FixtureFactory) Booking(roomID, requesterID string, opts ...func(*BookingFixture)) BookingFixture {
	seq := f.nextSeq()
	start := time.Now().Add(time.Duration(seq) * time.Hour).Truncate(time.Minute)

	booking := BookingFixture{
		ID:          uuid.New().String(),
		Title:       fmt.Sprintf("Meeting %d", seq),
		RoomID:      roomID,
		RequesterID: requesterID,
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Status:      "pending",
	}

	for _, opt := range opts {
		opt(&booking)
	}
	return booking
}
