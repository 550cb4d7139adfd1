package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/staffops/staffops-backend/pkg/actor"
)

// WithTestActor returns a context carrying an authenticated actor with the
// given role, as the auth middleware would attach it.
func WithTestActor(ctx context.Context, role string) (context.Context, *actor.Actor) {
	a := &actor.Actor{
		ID:          uuid.New().String(),
		DisplayName: "Test Actor",
		Email:       "actor@test.staffops.io",
		Role:        role,
	}
	return actor.WithActor(ctx, a), a
}
