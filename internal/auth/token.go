package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

type claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies HS256 bearer tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the actor and its expiry.
func (t *Tokens) Issue(a Actor) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}

	return signed, exp, nil
}

// Parse verifies the token and returns the actor it names.
func (t *Tokens) Parse(raw string) (Actor, error) {
	var c claims

	_, err := jwt.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Actor{}, ErrTokenExpired
		}

		return Actor{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Actor{}, fmt.Errorf("%w: bad subject", ErrTokenInvalid)
	}

	if !c.Role.Valid() {
		return Actor{}, fmt.Errorf("%w: bad role", ErrTokenInvalid)
	}

	return Actor{ID: id, Role: c.Role}, nil
}
