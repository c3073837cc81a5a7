package export_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

var created = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func invoices() []*invoice.Invoice {
	return []*invoice.Invoice{
		{
			Number:        "INV000001",
			Customer:      document.CustomerInfo{Name: "Asha Builders", Phone: "+919876543210"},
			Charges:       document.Charges{LoadingCharges: dec("50")},
			Totals:        document.Totals{Subtotal: dec("900"), TaxAmount: dec("171"), TotalAmount: dec("1121")},
			PaidAmount:    dec("600"),
			BalanceAmount: dec("521"),
			Status:        invoice.StatusPartialPaid,
			CreatedAt:     created,
			DueDate:       created.AddDate(0, 0, 30),
			Payments: []invoice.Payment{
				{Amount: dec("600"), Method: invoice.MethodUPI, Status: invoice.PaymentCompleted, PaymentDate: created.AddDate(0, 0, 3), TransactionID: "UTR123"},
			},
		},
		{
			Number:        "INV000002",
			Customer:      document.CustomerInfo{Name: "Ravi"},
			Totals:        document.Totals{Subtotal: dec("100"), TotalAmount: dec("100")},
			PaidAmount:    dec("0"),
			BalanceAmount: dec("100"),
			Status:        invoice.StatusCancelled,
			CreatedAt:     created.AddDate(0, 0, 1),
			DueDate:       created.AddDate(0, 0, 31),
		},
	}
}

func TestService_Export(t *testing.T) {
	trader := auth.Actor{ID: uuid.New(), Role: auth.RoleTrader}
	from := created.AddDate(0, 0, -1)
	filter := invoice.ListFilter{From: &from}

	lister := export.NewMockInvoiceLister(gomock.NewController(t))
	lister.EXPECT().Scoped(gomock.Any(), trader, filter).Return(invoices(), nil)

	var buf bytes.Buffer

	got, err := export.NewService(lister).Export(context.Background(), trader, filter, &buf)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	assert.Equal(t, []string{export.SheetInvoices, export.SheetPayments}, f.GetSheetList())

	rows, err := f.GetRows(export.SheetInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Number", rows[0][0])
	assert.Equal(t, []string{"INV000001", "Asha Builders", "+919876543210", "2024-06-01", "2024-07-01", "partial_paid"}, rows[1][:6])

	balance, err := f.GetCellValue(export.SheetInvoices, "M2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "521", balance)

	payments, err := f.GetRows(export.SheetPayments)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, []string{"INV000001", "2024-06-04", "upi", "completed"}, payments[1][:4])
	assert.Equal(t, "UTR123", payments[1][5])
}

func TestService_Export_Empty(t *testing.T) {
	lister := export.NewMockInvoiceLister(gomock.NewController(t))
	lister.EXPECT().Scoped(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	var buf bytes.Buffer

	got, err := export.NewService(lister).Export(context.Background(), auth.Actor{Role: auth.RoleAdmin}, invoice.ListFilter{}, &buf)
	require.NoError(t, err)
	assert.Empty(t, got)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(export.SheetInvoices)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestService_Export_ListError(t *testing.T) {
	boom := errors.New("db down")

	lister := export.NewMockInvoiceLister(gomock.NewController(t))
	lister.EXPECT().Scoped(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, boom)

	var buf bytes.Buffer

	_, err := export.NewService(lister).Export(context.Background(), auth.Actor{Role: auth.RoleAdmin}, invoice.ListFilter{}, &buf)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}

func TestService_GenerateSummary(t *testing.T) {
	svc := export.NewService(nil)

	got := svc.GenerateSummary(invoices())

	want := "* INV000001 | 2024-06-01 | Asha Builders | 1121.00 | paid 600.00 | due 521.00 | partial_paid\n" +
		"* INV000002 | 2024-06-02 | Ravi | 100.00 | paid 0.00 | due 100.00 | cancelled\n" +
		"2 invoices | total 1121.00 | paid 600.00 | outstanding 521.00\n"

	assert.Equal(t, want, got)
}
