package events

import (
	"context"

	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/messaging"
)

// BookingEventPublisher publishes booking change events. The events carry
// identifiers only and are best-effort freshness signals for subscribed
// clients; correctness never depends on their delivery.
type BookingEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewBookingEventPublisher creates a new booking event publisher
func NewBookingEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*BookingEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeBookingEvents, "booking-service", log)
	if err != nil {
		return nil, err
	}

	return &BookingEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishBookingCreated publishes a booking created event
func (p *BookingEventPublisher) PublishBookingCreated(ctx context.Context, booking *repository.Booking) {
	p.publishBookingChange(ctx, messaging.EventBookingCreated, booking, nil)
}

// PublishBookingApproved publishes a booking approved event
func (p *BookingEventPublisher) PublishBookingApproved(ctx context.Context, booking *repository.Booking, reviewerID string) {
	p.publishBookingChange(ctx, messaging.EventBookingApproved, booking, &reviewerID)
}

// PublishBookingRejected publishes a booking rejected event
func (p *BookingEventPublisher) PublishBookingRejected(ctx context.Context, booking *repository.Booking, reviewerID string) {
	p.publishBookingChange(ctx, messaging.EventBookingRejected, booking, &reviewerID)
}

// PublishBookingCancelled publishes a booking cancelled event
func (p *BookingEventPublisher) PublishBookingCancelled(ctx context.Context, booking *repository.Booking) {
	p.publishBookingChange(ctx, messaging.EventBookingCancelled, booking, nil)
}

// PublishRoomChanged publishes a room change event
func (p *BookingEventPublisher) PublishRoomChanged(ctx context.Context, eventType, roomID string) {
	data := messaging.RoomChangedEvent{RoomID: roomID}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("room_id", roomID).Msg("failed to publish room event")
	}
}

func (p *BookingEventPublisher) publishBookingChange(ctx context.Context, eventType string, booking *repository.Booking, actorID *string) {
	data := messaging.BookingChangedEvent{
		BookingID:   booking.ID,
		RoomID:      booking.RoomID,
		RequesterID: booking.RequesterID,
		Status:      booking.Status,
		ActorID:     actorID,
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking event")
	}
}
