package estimate_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
)

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEstimate(status estimate.Status) *estimate.Estimate {
	return &estimate.Estimate{
		ID:         uuid.New(),
		Number:     "EST000001",
		Status:     status,
		ValidUntil: now.Add(24 * time.Hour),
		Items: []document.LineItem{
			{Name: "Cement", Quantity: dec("10"), Unit: document.UnitBags, UnitPrice: dec("100"), DiscountPercent: dec("10")},
		},
		Charges: document.Charges{LoadingCharges: dec("50"), TaxPercent: dec("18")},
	}
}

func TestEstimate_Recompute(t *testing.T) {
	e := newEstimate(estimate.StatusDraft)
	e.Items[0].TotalPrice = dec("5")
	e.Totals.TotalAmount = dec("1")

	require.NoError(t, e.Recompute())

	assert.True(t, dec("900").Equal(e.Items[0].TotalPrice))
	assert.True(t, dec("900").Equal(e.Totals.Subtotal))
	assert.True(t, dec("950").Equal(e.Totals.TaxableAmount))
	assert.True(t, dec("171").Equal(e.Totals.TaxAmount))
	assert.True(t, dec("1121").Equal(e.Totals.TotalAmount))
}

func TestEstimate_Transitions(t *testing.T) {
	type testCase struct {
		name       string
		from       estimate.Status
		apply      func(e *estimate.Estimate) error
		wantStatus estimate.Status
		wantErr    bool
	}

	send := func(e *estimate.Estimate) error { return e.Send(now) }
	accept := func(e *estimate.Estimate) error { return e.Accept(now) }
	reject := func(e *estimate.Estimate) error { return e.Reject(now, "too pricey") }

	tests := []testCase{
		{name: "Send draft", from: estimate.StatusDraft, apply: send, wantStatus: estimate.StatusSent},
		{name: "Send twice", from: estimate.StatusSent, apply: send, wantErr: true},
		{name: "Accept sent", from: estimate.StatusSent, apply: accept, wantStatus: estimate.StatusAccepted},
		{name: "Accept viewed", from: estimate.StatusViewed, apply: accept, wantStatus: estimate.StatusAccepted},
		{name: "Accept draft", from: estimate.StatusDraft, apply: accept, wantErr: true},
		{name: "Accept rejected", from: estimate.StatusRejected, apply: accept, wantErr: true},
		{name: "Reject draft", from: estimate.StatusDraft, apply: reject, wantStatus: estimate.StatusRejected},
		{name: "Reject viewed", from: estimate.StatusViewed, apply: reject, wantStatus: estimate.StatusRejected},
		{name: "Reject accepted", from: estimate.StatusAccepted, apply: reject, wantErr: true},
		{name: "Reject converted", from: estimate.StatusConverted, apply: reject, wantErr: true},
		{name: "Reject expired", from: estimate.StatusExpired, apply: reject, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEstimate(tt.from)
			err := tt.apply(e)

			if tt.wantErr {
				assert.ErrorIs(t, err, apperr.ErrInvalidState)
				assert.Equal(t, tt.from, e.Status)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, e.Status)
		})
	}
}

func TestEstimate_AcceptExpired(t *testing.T) {
	e := newEstimate(estimate.StatusSent)
	e.ValidUntil = now.Add(-24 * time.Hour)

	assert.True(t, e.IsExpired(now))

	err := e.Accept(now)

	var se *apperr.InvalidStateError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "accept", se.Op)
	assert.Equal(t, estimate.StatusSent, e.Status)
	assert.Nil(t, e.AcceptedAt)
}

func TestEstimate_AcceptOnDeadline(t *testing.T) {
	e := newEstimate(estimate.StatusSent)
	e.ValidUntil = now

	assert.False(t, e.IsExpired(now))
	require.NoError(t, e.Accept(now))
	require.NotNil(t, e.AcceptedAt)
	assert.Equal(t, now, *e.AcceptedAt)
}

func TestEstimate_Reject(t *testing.T) {
	e := newEstimate(estimate.StatusSent)

	require.NoError(t, e.Reject(now, "found cheaper"))
	assert.Equal(t, "found cheaper", e.RejectionReason)
	require.NotNil(t, e.RejectedAt)
	assert.True(t, e.Status.Terminal())
}

func TestEstimate_MarkViewed(t *testing.T) {
	e := newEstimate(estimate.StatusSent)

	assert.True(t, e.MarkViewed(now))
	assert.Equal(t, estimate.StatusViewed, e.Status)
	require.NotNil(t, e.ViewedAt)

	later := now.Add(time.Hour)
	assert.False(t, e.MarkViewed(later))
	assert.Equal(t, now, *e.ViewedAt)

	draft := newEstimate(estimate.StatusDraft)
	assert.False(t, draft.MarkViewed(now))
	assert.Nil(t, draft.ViewedAt)
	assert.Equal(t, estimate.StatusDraft, draft.Status)
}

func TestEstimate_Expire(t *testing.T) {
	type testCase struct {
		name       string
		status     estimate.Status
		validUntil time.Time
		want       bool
		wantStatus estimate.Status
	}

	yesterday := now.Add(-24 * time.Hour)

	tests := []testCase{
		{name: "Sent and past validity", status: estimate.StatusSent, validUntil: yesterday, want: true, wantStatus: estimate.StatusExpired},
		{name: "Sent and still valid", status: estimate.StatusSent, validUntil: now.Add(time.Hour), wantStatus: estimate.StatusSent},
		{name: "Viewed is not expired", status: estimate.StatusViewed, validUntil: yesterday, wantStatus: estimate.StatusViewed},
		{name: "Draft is not expired", status: estimate.StatusDraft, validUntil: yesterday, wantStatus: estimate.StatusDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEstimate(tt.status)
			e.ValidUntil = tt.validUntil

			assert.Equal(t, tt.want, e.Expire(now))
			assert.Equal(t, tt.wantStatus, e.Status)
		})
	}
}

func TestEstimate_EnsureEditable(t *testing.T) {
	for _, s := range []estimate.Status{estimate.StatusDraft, estimate.StatusSent, estimate.StatusViewed, estimate.StatusRejected, estimate.StatusExpired} {
		assert.NoError(t, newEstimate(s).EnsureEditable("update"), s)
	}

	for _, s := range []estimate.Status{estimate.StatusAccepted, estimate.StatusConverted} {
		assert.ErrorIs(t, newEstimate(s).EnsureEditable("update"), apperr.ErrInvalidState, s)
	}
}

func TestEstimate_MarkConverted(t *testing.T) {
	e := newEstimate(estimate.StatusAccepted)
	invoiceID := uuid.New()

	require.NoError(t, e.MarkConverted(invoiceID, now))
	assert.Equal(t, estimate.StatusConverted, e.Status)
	assert.True(t, e.ConvertedToInvoice)
	require.NotNil(t, e.InvoiceID)
	assert.Equal(t, invoiceID, *e.InvoiceID)

	assert.ErrorIs(t, e.MarkConverted(uuid.New(), now), apperr.ErrInvalidState)
	assert.Equal(t, invoiceID, *e.InvoiceID)

	sent := newEstimate(estimate.StatusSent)
	assert.ErrorIs(t, sent.EnsureConvertible(), apperr.ErrInvalidState)

	flagged := newEstimate(estimate.StatusAccepted)
	flagged.ConvertedToInvoice = true
	assert.ErrorIs(t, flagged.EnsureConvertible(), apperr.ErrInvalidState)
}
