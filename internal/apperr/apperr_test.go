package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
)

func TestKinds_Unwrap(t *testing.T) {
	type testCase struct {
		name     string
		err      error
		sentinel error
		msg      string
	}

	tests := []testCase{
		{
			name:     "Validation",
			err:      apperr.Invalid("quantity", -1, "must be greater than zero"),
			sentinel: apperr.ErrValidation,
			msg:      "invalid quantity: must be greater than zero",
		},
		{
			name: "InvalidState",
			err: &apperr.InvalidStateError{
				Entity:  "estimate",
				ID:      "EST000001",
				Op:      "edit",
				Status:  "accepted",
				Allowed: []string{"draft", "sent"},
			},
			sentinel: apperr.ErrInvalidState,
			msg:      `cannot edit estimate EST000001 in status "accepted" (allowed: draft, sent)`,
		},
		{
			name:     "NotFound",
			err:      &apperr.NotFoundError{Entity: "invoice", ID: "INV000009"},
			sentinel: apperr.ErrNotFound,
			msg:      "invoice INV000009 not found",
		},
		{
			name:     "Authorization",
			err:      apperr.Forbidden("send estimate", "not the owning trader"),
			sentinel: apperr.ErrUnauthorized,
			msg:      "not allowed to send estimate: not the owning trader",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)

			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestValidationError_As(t *testing.T) {
	err := fmt.Errorf("create: %w", apperr.Invalid("discountPercent", "120", "must be between 0 and 100"))

	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
	assert.Equal(t, "discountPercent", ve.Field)
	assert.Equal(t, "120", ve.Value)
}
