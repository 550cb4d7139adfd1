package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/staffops/staffops-backend/pkg/database"
	"github.com/staffops/staffops-backend/pkg/errors"
)

// Profile is a local cache of identity-provider users, kept current by the
// user-event consumer. It supplies display names for requesters and
// approvers.
type Profile struct {
	ID          string    `db:"id" json:"id"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Role        string    `db:"role" json:"role"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProfileRepository handles the profile cache
type ProfileRepository struct {
	db *database.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *database.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Upsert inserts or updates a cached profile
func (r *ProfileRepository) Upsert(ctx context.Context, profile *Profile) error {
	query := `
		INSERT INTO profiles (id, email, display_name, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			role = EXCLUDED.role,
			updated_at = NOW()
	`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Email, profile.DisplayName, profile.Role,
	)
	return err
}

// GetByID gets a cached profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*Profile, error) {
	var profile Profile

	query := `
		SELECT id, email, display_name, role, created_at, updated_at
		FROM profiles
		WHERE id = $1
	`
	err := r.db.GetContext(ctx, &profile, query, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("profile")
	}
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// Delete removes a cached profile
func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	return err
}
