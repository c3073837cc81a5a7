// Package authn authenticates API requests from their bearer token.
package authn

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/respond"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

//go:generate mockgen -source=authn.go -destination=authn_mock.go -package=authn
type TokenParser interface {
	Parse(raw string) (auth.Actor, error)
}

type UserAuthenticator interface {
	Authenticate(ctx context.Context, a auth.Actor) (*user.User, error)
}

type userKey struct{}

// Middleware resolves the caller and stores the actor on the request context.
// The user is reloaded on every request so suspensions take effect at once.
func Middleware(tokens TokenParser, users UserAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearer(r)
			if !ok {
				respond.Unauthenticated(w, r, "missing bearer token")
				return
			}

			a, err := tokens.Parse(raw)
			if err != nil {
				respond.Unauthenticated(w, r, err.Error())
				return
			}

			u, err := users.Authenticate(r.Context(), a)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthorized) {
					respond.Unauthenticated(w, r, err.Error())
					return
				}

				respond.Error(w, r, err)

				return
			}

			actor := u.Actor()

			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("actor_id", actor.ID.String()).Str("actor_role", string(actor.Role))
			})

			ctx := auth.WithActor(r.Context(), actor)
			ctx = context.WithValue(ctx, userKey{}, u)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")

	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// Actor returns the authenticated actor. Handlers behind Middleware can rely
// on it being present.
func Actor(r *http.Request) auth.Actor {
	a, _ := auth.ActorFrom(r.Context())
	return a
}

// User returns the user loaded by Middleware.
func User(r *http.Request) *user.User {
	u, _ := r.Context().Value(userKey{}).(*user.User)
	return u
}
