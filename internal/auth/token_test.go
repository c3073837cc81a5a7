package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleTrader}

	raw, exp, err := tokens.Issue(actor)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := tokens.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, actor, got)
}

func TestTokens_Parse(t *testing.T) {
	issued := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	signer := auth.NewTokens("secret", time.Hour)
	signer.SetClock(func() time.Time { return issued })

	raw, _, err := signer.Issue(auth.Actor{ID: uuid.New(), Role: auth.RoleCustomer})
	require.NoError(t, err)

	type testCase struct {
		name    string
		secret  string
		now     time.Time
		token   string
		wantErr error
	}

	tests := []testCase{
		{name: "Valid", secret: "secret", now: issued.Add(30 * time.Minute), token: raw},
		{name: "Expired", secret: "secret", now: issued.Add(2 * time.Hour), token: raw, wantErr: auth.ErrTokenExpired},
		{name: "WrongSecret", secret: "other", now: issued, token: raw, wantErr: auth.ErrTokenInvalid},
		{name: "Garbage", secret: "secret", now: issued, token: "not-a-token", wantErr: auth.ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := auth.NewTokens(tt.secret, time.Hour)
			verifier.SetClock(func() time.Time { return tt.now })

			got, err := verifier.Parse(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, auth.RoleCustomer, got.Role)
		})
	}
}

func TestActorContext(t *testing.T) {
	_, ok := auth.ActorFrom(context.Background())
	assert.False(t, ok)

	actor := auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	got, ok := auth.ActorFrom(auth.WithActor(context.Background(), actor))
	assert.True(t, ok)
	assert.True(t, got.IsAdmin())
}
