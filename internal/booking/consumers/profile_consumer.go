package consumers

import (
	"context"

	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/messaging"
)

// ProfileEventConsumer keeps the local profile cache in sync with the
// identity service. Bookings only need a display name and role for each
// requester, so the cache is a small denormalized copy, refreshed on every
// user event.
type ProfileEventConsumer struct {
	consumer    *messaging.Consumer
	profileRepo *repository.ProfileRepository
	logger      *logger.Logger
}

// NewProfileEventConsumer creates a new profile event consumer
func NewProfileEventConsumer(
	rmq *messaging.RabbitMQ,
	profileRepo *repository.ProfileRepository,
	log *logger.Logger,
) (*ProfileEventConsumer, error) {
	consumer, err := messaging.NewConsumer(rmq, "booking-service.user-events", log)
	if err != nil {
		return nil, err
	}

	if err := consumer.Subscribe(messaging.ExchangeUserEvents, "user.#"); err != nil {
		return nil, err
	}

	c := &ProfileEventConsumer{
		consumer:    consumer,
		profileRepo: profileRepo,
		logger:      log,
	}

	consumer.RegisterHandler(messaging.EventUserCreated, c.handleUserUpserted)
	consumer.RegisterHandler(messaging.EventUserUpdated, c.handleUserUpserted)
	consumer.RegisterHandler(messaging.EventUserDeleted, c.handleUserDeleted)

	return c, nil
}

// Start starts consuming messages
func (c *ProfileEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// handleUserUpserted covers both created and updated events. The upsert is
// idempotent, so replayed or reordered events converge on the same row.
func (c *ProfileEventConsumer) handleUserUpserted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Str("event_type", event.Type).
		Msg("received user event")

	return c.profileRepo.Upsert(ctx, &repository.Profile{
		ID:          data.UserID,
		Email:       data.Email,
		DisplayName: data.DisplayName,
		Role:        data.Role,
	})
}

func (c *ProfileEventConsumer) handleUserDeleted(ctx context.Context, event *messaging.Event) error {
	var data messaging.UserEvent
	if err := event.UnmarshalData(&data); err != nil {
		return err
	}

	c.logger.Info().
		Str("user_id", data.UserID).
		Msg("received user deleted event")

	return c.profileRepo.Delete(ctx, data.UserID)
}
