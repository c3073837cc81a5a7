package invoice_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/apperr"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/event"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	"github.com/MrJamesThe3rd/buildestimate/internal/sequence"
)

type mocks struct {
	repo      *invoice.MockRepository
	numbers   *invoice.MockNumberer
	customers *invoice.MockCustomerDirectory
	events    *event.MockPublisher
}

var (
	trader   = auth.Actor{ID: uuid.New(), Role: auth.RoleTrader}
	customer = auth.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
	admin    = auth.Actor{ID: uuid.New(), Role: auth.RoleAdmin}
	stranger = auth.Actor{ID: uuid.New(), Role: auth.RoleCustomer}
)

func newService(t *testing.T, cfg invoice.Config) (*invoice.Service, mocks) {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:      invoice.NewMockRepository(ctrl),
		numbers:   invoice.NewMockNumberer(ctrl),
		customers: invoice.NewMockCustomerDirectory(ctrl),
		events:    event.NewMockPublisher(ctrl),
	}

	svc := invoice.NewService(m.repo, m.numbers, m.customers, m.events, cfg)
	svc.SetClock(func() time.Time { return now })

	return svc, m
}

func owned(status invoice.Status) *invoice.Invoice {
	inv := newInvoice(status)
	inv.TraderID = trader.ID
	inv.CustomerID = customer.ID

	return inv
}

func TestService_Create(t *testing.T) {
	type args struct {
		actor  auth.Actor
		params invoice.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m mocks)
		wantDue   time.Time
		wantErr   error
	}

	items := []document.LineItem{{Name: "Bricks", Quantity: dec("10"), Unit: document.UnitPieces, UnitPrice: dec("100")}}
	due := now.Add(10 * 24 * time.Hour)

	success := func(m mocks) {
		m.customers.EXPECT().CustomerInfo(gomock.Any(), customer.ID).Return(document.CustomerInfo{Name: "Asha"}, nil)
		m.numbers.EXPECT().Next(gomock.Any(), sequence.KindInvoice).Return("INV000003", nil)
		m.repo.EXPECT().CreateInvoice(gomock.Any(), gomock.Any()).Return(nil)
	}

	tests := []testCase{
		{
			name:      "Default due date",
			args:      args{actor: trader, params: invoice.CreateParams{CustomerID: customer.ID, Items: items}},
			setupMock: success,
			wantDue:   now.Add(15 * 24 * time.Hour),
		},
		{
			name:      "Explicit due date",
			args:      args{actor: trader, params: invoice.CreateParams{CustomerID: customer.ID, Items: items, DueDate: &due}},
			setupMock: success,
			wantDue:   due,
		},
		{
			name:    "Customer cannot create",
			args:    args{actor: customer, params: invoice.CreateParams{CustomerID: customer.ID, Items: items}},
			wantErr: apperr.ErrUnauthorized,
		},
		{
			name: "Bad item",
			args: args{actor: trader, params: invoice.CreateParams{
				CustomerID: customer.ID,
				Items:      []document.LineItem{{Name: "Bricks", Quantity: dec("1"), Unit: "crates"}},
			}},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, invoice.Config{DefaultDueIn: 15 * 24 * time.Hour})
			if tt.setupMock != nil {
				tt.setupMock(m)
			}

			got, err := svc.Create(context.Background(), tt.args.actor, tt.args.params)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "INV000003", got.Number)
			assert.Equal(t, invoice.StatusDraft, got.Status)
			assert.Equal(t, tt.wantDue, got.DueDate)
			assert.Nil(t, got.EstimateID)
			assertDecimal(t, "1000", got.BalanceAmount)
		})
	}
}

func TestService_DefaultDueIn(t *testing.T) {
	svc, _ := newService(t, invoice.Config{})
	assert.Equal(t, now.Add(30*24*time.Hour), svc.DueDate(now))
}

func TestService_Update(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusSent)
	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(nil)

	got, err := svc.Update(context.Background(), trader, inv.ID, invoice.UpdateParams{
		Charges: &document.Charges{TaxPercent: dec("10")},
	})
	require.NoError(t, err)
	assertDecimal(t, "1100", got.Totals.TotalAmount)
	assertDecimal(t, "1100", got.BalanceAmount)

	paid := owned(invoice.StatusPaid)
	m.repo.EXPECT().GetInvoice(gomock.Any(), paid.ID).Return(paid, nil)

	_, err = svc.Update(context.Background(), trader, paid.ID, invoice.UpdateParams{})
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	other := owned(invoice.StatusDraft)
	m.repo.EXPECT().GetInvoice(gomock.Any(), other.ID).Return(other, nil)

	_, err = svc.Update(context.Background(), customer, other.ID, invoice.UpdateParams{})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestService_Delete(t *testing.T) {
	type testCase struct {
		name    string
		actor   auth.Actor
		current *invoice.Invoice
		wantErr error
	}

	withPayment := owned(invoice.StatusPartialPaid)
	withPayment.Payments = []invoice.Payment{completed("10")}
	require.NoError(t, withPayment.Recompute(now))

	tests := []testCase{
		{name: "Unpaid", actor: trader, current: owned(invoice.StatusDraft)},
		{name: "Admin", actor: admin, current: owned(invoice.StatusSent)},
		{name: "Has payments", actor: trader, current: withPayment, wantErr: apperr.ErrInvalidState},
		{name: "Unrelated customer", actor: stranger, current: owned(invoice.StatusDraft), wantErr: apperr.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, invoice.Config{})

			m.repo.EXPECT().GetInvoice(gomock.Any(), tt.current.ID).Return(tt.current, nil)

			if tt.wantErr == nil {
				m.repo.EXPECT().DeleteInvoice(gomock.Any(), tt.current.ID).Return(nil)
			}

			err := svc.Delete(context.Background(), tt.actor, tt.current.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
		})
	}
}

func TestService_Get_ViewTracking(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusSent)
	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil).Times(2)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(nil)

	got, err := svc.Get(context.Background(), customer, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, got.Status)
	require.NotNil(t, got.ViewedAt)

	_, err = svc.Get(context.Background(), customer, inv.ID)
	require.NoError(t, err)
}

func TestService_AddPayment(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusSent)
	require.NoError(t, inv.Recompute(now))

	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil).Times(2)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(nil).Times(2)
	m.events.EXPECT().Publish(gomock.Any(), event.Event{
		Type:      event.InvoicePaid,
		EntityID:  inv.ID,
		Number:    inv.Number,
		ActorID:   trader.ID,
		Timestamp: now,
	}).Times(1)

	got, err := svc.AddPayment(context.Background(), trader, inv.ID, invoice.PaymentParams{
		Amount: dec("400"),
		Method: invoice.MethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPartialPaid, got.Status)
	assertDecimal(t, "600", got.BalanceAmount)

	got, err = svc.AddPayment(context.Background(), trader, inv.ID, invoice.PaymentParams{
		Amount:        dec("600"),
		Method:        invoice.MethodBankTransfer,
		TransactionID: " UTR123 ",
	})
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, got.Status)
	assertDecimal(t, "0", got.BalanceAmount)
	assert.Equal(t, "UTR123", got.Payments[1].TransactionID)
}

func TestService_AddPayment_CustomerForbidden(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusSent)
	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)

	_, err := svc.AddPayment(context.Background(), customer, inv.ID, invoice.PaymentParams{Amount: dec("1"), Method: invoice.MethodCash})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestService_Send(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusDraft)
	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(nil)
	m.events.EXPECT().Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, ev event.Event) {
			assert.Equal(t, event.InvoiceSent, ev.Type)
		})

	got, err := svc.Send(context.Background(), trader, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusSent, got.Status)
}

func TestService_Cancel(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	inv := owned(invoice.StatusSent)
	m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(nil)

	got, err := svc.Cancel(context.Background(), trader, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusCancelled, got.Status)
}

func TestService_PaymentLink(t *testing.T) {
	type testCase struct {
		name    string
		cfg     invoice.Config
		current func() *invoice.Invoice
		want    string
		wantErr error
	}

	cfg := invoice.Config{UPIID: "shop@upi", MerchantName: "Shop"}

	tests := []testCase{
		{
			name: "Outstanding balance",
			cfg:  cfg,
			current: func() *invoice.Invoice {
				inv := owned(invoice.StatusSent)
				inv.Payments = []invoice.Payment{completed("400")}
				_ = inv.Recompute(now)

				return inv
			},
			want: "upi://pay?pa=shop@upi&pn=Shop&am=600.00&cu=INR&tn=Payment%20for%20Invoice%20INV000001&tr=INV000001",
		},
		{
			name: "Fully paid",
			cfg:  cfg,
			current: func() *invoice.Invoice {
				inv := owned(invoice.StatusSent)
				inv.Payments = []invoice.Payment{completed("1000")}
				_ = inv.Recompute(now)

				return inv
			},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name: "Cancelled",
			cfg:  cfg,
			current: func() *invoice.Invoice {
				inv := owned(invoice.StatusCancelled)
				_ = inv.Recompute(now)

				return inv
			},
			wantErr: apperr.ErrInvalidState,
		},
		{
			name:    "No UPI id",
			cfg:     invoice.Config{},
			wantErr: apperr.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t, tt.cfg)

			id := uuid.New()
			if tt.current != nil {
				inv := tt.current()
				id = inv.ID
				m.repo.EXPECT().GetInvoice(gomock.Any(), id).Return(inv, nil)
			}

			got, err := svc.PaymentLink(context.Background(), customer, id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_List(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	m.repo.EXPECT().ListInvoices(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, f invoice.ListFilter) ([]*invoice.Invoice, error) {
			require.NotNil(t, f.CustomerID)
			assert.Equal(t, customer.ID, *f.CustomerID)
			assert.Equal(t, invoice.DefaultPageSize, f.Limit)

			return []*invoice.Invoice{owned(invoice.StatusSent)}, nil
		})
	m.repo.EXPECT().CountInvoices(gomock.Any(), gomock.Any()).Return(21, nil)

	got, err := svc.List(context.Background(), customer, invoice.ListParams{})
	require.NoError(t, err)
	assert.Len(t, got.Invoices, 1)
	assert.Equal(t, 3, got.TotalPages)
	assert.Equal(t, 1, got.Page)
}

func TestService_MarkOverdue(t *testing.T) {
	svc, m := newService(t, invoice.Config{})

	late := owned(invoice.StatusSent)
	late.DueDate = now.Add(-time.Hour)

	settled := owned(invoice.StatusSent)
	settled.DueDate = now.Add(-time.Hour)
	settled.Payments = []invoice.Payment{completed("1000")}
	settled.Status = invoice.StatusPaid

	m.repo.EXPECT().ListOverdue(gomock.Any(), now).Return([]*invoice.Invoice{late, settled}, nil)
	m.repo.EXPECT().UpdateInvoice(gomock.Any(), late).Return(nil)

	n, err := svc.MarkOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, invoice.StatusOverdue, late.Status)
	assert.Equal(t, invoice.StatusPaid, settled.Status)
}

func TestService_RowVanishedAfterLoad(t *testing.T) {
	t.Run("Delete", func(t *testing.T) {
		svc, m := newService(t, invoice.Config{})

		inv := owned(invoice.StatusDraft)
		m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
		m.repo.EXPECT().DeleteInvoice(gomock.Any(), inv.ID).Return(invoice.ErrNotFound)

		err := svc.Delete(context.Background(), trader, inv.ID)

		var nf *apperr.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, inv.ID.String(), nf.ID)
	})

	t.Run("Send", func(t *testing.T) {
		svc, m := newService(t, invoice.Config{})

		inv := owned(invoice.StatusDraft)
		m.repo.EXPECT().GetInvoice(gomock.Any(), inv.ID).Return(inv, nil)
		m.repo.EXPECT().UpdateInvoice(gomock.Any(), inv).Return(invoice.ErrNotFound)

		_, err := svc.Send(context.Background(), trader, inv.ID)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}
