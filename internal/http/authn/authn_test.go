package authn_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/http/authn"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

func TestMiddleware(t *testing.T) {
	trader := &user.User{ID: uuid.New(), Role: auth.RoleTrader, Status: user.StatusActive}

	type args struct {
		header string
	}

	type testCase struct {
		name       string
		args       args
		setup      func(tokens *authn.MockTokenParser, users *authn.MockUserAuthenticator)
		wantStatus int
		wantActor  auth.Actor
	}

	tests := []testCase{
		{
			name:       "Missing header",
			args:       args{},
			setup:      func(*authn.MockTokenParser, *authn.MockUserAuthenticator) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			args:       args{header: "Basic dXNlcjpwYXNz"},
			setup:      func(*authn.MockTokenParser, *authn.MockUserAuthenticator) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Expired token",
			args: args{header: "Bearer stale"},
			setup: func(tokens *authn.MockTokenParser, _ *authn.MockUserAuthenticator) {
				tokens.EXPECT().Parse("stale").Return(auth.Actor{}, auth.ErrTokenExpired)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Suspended user",
			args: args{header: "Bearer good"},
			setup: func(tokens *authn.MockTokenParser, users *authn.MockUserAuthenticator) {
				tokens.EXPECT().Parse("good").Return(trader.Actor(), nil)
				users.EXPECT().Authenticate(gomock.Any(), trader.Actor()).
					Return(nil, apperr.Forbidden("authenticate", "account is suspended"))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "Lookup failure",
			args: args{header: "Bearer good"},
			setup: func(tokens *authn.MockTokenParser, users *authn.MockUserAuthenticator) {
				tokens.EXPECT().Parse("good").Return(trader.Actor(), nil)
				users.EXPECT().Authenticate(gomock.Any(), trader.Actor()).Return(nil, errors.New("connection reset"))
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "Authenticated",
			args: args{header: "bearer good"},
			setup: func(tokens *authn.MockTokenParser, users *authn.MockUserAuthenticator) {
				tokens.EXPECT().Parse("good").Return(trader.Actor(), nil)
				users.EXPECT().Authenticate(gomock.Any(), trader.Actor()).Return(trader, nil)
			},
			wantStatus: http.StatusNoContent,
			wantActor:  trader.Actor(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			tokens := authn.NewMockTokenParser(ctrl)
			users := authn.NewMockUserAuthenticator(ctrl)
			tt.setup(tokens, users)

			var gotActor auth.Actor
			var gotUser *user.User

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotActor = authn.Actor(r)
				gotUser = authn.User(r)
				w.WriteHeader(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.args.header != "" {
				req.Header.Set("Authorization", tt.args.header)
			}

			rec := httptest.NewRecorder()
			authn.Middleware(tokens, users)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantActor, gotActor)

			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
			}

			if tt.wantStatus == http.StatusNoContent {
				assert.Same(t, trader, gotUser)
			}
		})
	}
}
