package service

import (
	"context"
	"strings"

	"github.com/staffops/staffops-backend/internal/booking/repository"
	"github.com/staffops/staffops-backend/pkg/actor"
	"github.com/staffops/staffops-backend/pkg/capability"
	"github.com/staffops/staffops-backend/pkg/errors"
	"github.com/staffops/staffops-backend/pkg/logger"
	"github.com/staffops/staffops-backend/pkg/messaging"
)

// RoomEventPublisher publishes room change events.
type RoomEventPublisher interface {
	PublishRoomChanged(ctx context.Context, eventType, roomID string)
}

// RoomService handles room reference data. Rooms are read-mostly; only
// admins manage them.
type RoomService struct {
	roomRepo  *repository.RoomRepository
	publisher RoomEventPublisher
	logger    *logger.Logger
}

// NewRoomService creates a new room service
func NewRoomService(roomRepo *repository.RoomRepository, publisher RoomEventPublisher, log *logger.Logger) *RoomService {
	return &RoomService{
		roomRepo:  roomRepo,
		publisher: publisher,
		logger:    log,
	}
}

// Create creates a new room
func (s *RoomService) Create(ctx context.Context, room *repository.Room) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}

	if strings.TrimSpace(room.Name) == "" {
		return errors.Validation(map[string]string{"name": "this field is required"})
	}
	if room.Capacity <= 0 {
		return errors.Validation(map[string]string{"capacity": "must be greater than zero"})
	}

	if err := s.roomRepo.Create(ctx, room); err != nil {
		return err
	}

	s.publisher.PublishRoomChanged(ctx, messaging.EventRoomCreated, room.ID)

	s.logger.Info().
		Str("room_id", room.ID).
		Str("name", room.Name).
		Msg("room created")

	return nil
}

// GetByID gets a room by ID
func (s *RoomService) GetByID(ctx context.Context, id string) (*repository.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

// List lists rooms
func (s *RoomService) List(ctx context.Context, activeOnly bool) ([]*repository.Room, error) {
	return s.roomRepo.List(ctx, activeOnly)
}

// Update updates a room
func (s *RoomService) Update(ctx context.Context, room *repository.Room) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}

	if room.Capacity <= 0 {
		return errors.Validation(map[string]string{"capacity": "must be greater than zero"})
	}

	if err := s.roomRepo.Update(ctx, room); err != nil {
		return err
	}

	s.publisher.PublishRoomChanged(ctx, messaging.EventRoomUpdated, room.ID)

	s.logger.Info().
		Str("room_id", room.ID).
		Msg("room updated")

	return nil
}

// Deactivate marks a room inactive
func (s *RoomService) Deactivate(ctx context.Context, id string) error {
	if err := s.requireManage(ctx); err != nil {
		return err
	}

	if err := s.roomRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishRoomChanged(ctx, messaging.EventRoomDeleted, id)

	s.logger.Info().
		Str("room_id", id).
		Msg("room deactivated")

	return nil
}

func (s *RoomService) requireManage(ctx context.Context) error {
	a := actor.FromContext(ctx)
	if a == nil {
		return errors.Unauthorized("authentication required")
	}
	if !capability.Can(a.Role, capability.ActionRoomManage) {
		return errors.Forbidden("role cannot manage rooms")
	}
	return nil
}
