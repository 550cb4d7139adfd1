// Package actor identifies the user performing an action. The identity is
// established by the auth middleware from claims in the externally issued
// token and carried through request contexts for authorization and audit
// logging.
package actor

import (
	"context"
	"fmt"
)

// Actor represents the entity performing an action in the system.
type Actor struct {
	// ID is the unique identifier of the actor (user ID)
	ID string `json:"id"`

	// DisplayName is the actor's display name
	DisplayName string `json:"display_name"`

	// Email is the actor's email address
	Email string `json:"email"`

	// Role is the actor's role: staff, leader, or admin
	Role string `json:"role"`
}

// String returns a string representation of the actor for logging
func (a *Actor) String() string {
	if a == nil {
		return "system"
	}
	return fmt.Sprintf("%s (%s)", a.DisplayName, a.Email)
}

// contextKey is the type for context keys to avoid collisions
type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context.
// Returns nil if no actor is present (e.g., system operations).
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached.
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}
