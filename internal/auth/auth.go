// Package auth carries the authenticated actor through a request and
// issues the bearer tokens that identify it.
package auth

import (
	"context"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrader   Role = "trader"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrader, RoleCustomer:
		return true
	}

	return false
}

// Actor is the user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsTrader() bool   { return a.Role == RoleTrader }
func (a Actor) IsCustomer() bool { return a.Role == RoleCustomer }

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}

// Sees reports whether the actor may read a document owned by traderID and
// addressed to customerID.
func (a Actor) Sees(traderID, customerID uuid.UUID) bool {
	return a.IsAdmin() || a.ID == traderID || a.ID == customerID
}
