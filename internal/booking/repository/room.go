package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/errors"
)

// Room is read-mostly reference data for the booking workflow.
type Room struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// RoomRepository handles room persistence
type RoomRepository struct {
	db *database.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *database.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// Create creates a new room
func (r *RoomRepository) Create(ctx context.Context, room *Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}

	query := `
		INSERT INTO rooms (id, name, capacity, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		room.ID, room.Name, room.Capacity, room.IsActive,
	).Scan(&room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	return nil
}

// GetByID gets a room by ID
func (r *RoomRepository) GetByID(ctx context.Context, id string) (*Room, error) {
	var room Room

	query := `
		SELECT id, name, capacity, is_active, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &room, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("room")
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

// List lists rooms, optionally restricted to active ones
func (r *RoomRepository) List(ctx context.Context, activeOnly bool) ([]*Room, error) {
	query := `
		SELECT id, name, capacity, is_active, created_at, updated_at
		FROM rooms
	`
	if activeOnly {
		query += " WHERE is_active = true"
	}
	query += " ORDER BY name"

	var rooms []*Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, err
	}

	return rooms, nil
}

// Update updates a room
func (r *RoomRepository) Update(ctx context.Context, room *Room) error {
	query := `
		UPDATE rooms SET
			name = $2, capacity = $3, is_active = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		room.ID, room.Name, room.Capacity, room.IsActive,
	)
	if err != nil {
		if appErr := database.MapPQError(err); appErr != nil {
			return appErr
		}
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("room")
	}

	return nil
}

// Deactivate marks a room inactive. Bookings keep their history; new
// bookings against an inactive room are refused by the service.
func (r *RoomRepository) Deactivate(ctx context.Context, id string) error {
	query := `UPDATE rooms SET is_active = false, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("room")
	}

	return nil
}
