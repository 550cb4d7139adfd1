package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types. Booking and room events are change signals only: subscribers
// re-fetch the affected relation rather than applying diffs.
const (
	// Booking events
	EventBookingCreated   = "booking.created"
	EventBookingApproved  = "booking.approved"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"

	// Room events
	EventRoomCreated = "room.created"
	EventRoomUpdated = "room.updated"
	EventRoomDeleted = "room.deleted"

	// Identity provider events consumed into the profile cache
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Exchange names
const (
	ExchangeBookingEvents = "booking.events"
	ExchangeUserEvents    = "user.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// BookingChangedEvent is published on every booking state change. It carries
// identifiers only; subscribers re-fetch the rows they care about.
type BookingChangedEvent struct {
	BookingID   string  `json:"booking_id"`
	RoomID      string  `json:"room_id"`
	RequesterID string  `json:"requester_id"`
	Status      string  `json:"status"`
	ActorID     *string `json:"actor_id,omitempty"`
}

// RoomChangedEvent is published when room reference data changes.
type RoomChangedEvent struct {
	RoomID string `json:"room_id"`
}

// UserEvent carries the identity provider's user payload for the profile cache.
type UserEvent struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}
