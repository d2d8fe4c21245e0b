package model

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/types"
)

// Actor is the user performing an operation. A nil *Actor means the
// operation is initiated by the system (the SLA engine).
type Actor struct {
	ID   string
	Role types.Role
}

// IsSystem reports whether the operation is system-initiated
func (a *Actor) IsSystem() bool {
	return a == nil
}

// IsSuperadmin reports whether the actor holds the superadmin role
func (a *Actor) IsSuperadmin() bool {
	return a != nil && a.Role == types.RoleSuperadmin
}

// UserID returns the actor ID, or an empty string for the system
func (a *Actor) UserID() string {
	if a == nil {
		return ""
	}
	return a.ID
}

type actorCtxKey struct{}

// ContextWithActor stores the actor in the context
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey{}, actor)
}

// ActorFromContext returns the actor stored in the context, or nil
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorCtxKey{}).(*Actor)
	return actor
}
