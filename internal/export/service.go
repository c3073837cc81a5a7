package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

const (
	SheetInvoices = "Invoices"
	SheetPayments = "Payments"

	// ContentType is the media type of the workbook written by Export.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout = "2006-01-02"
)

var (
	invoiceHeadings = []any{
		"Number", "Customer", "Phone", "Created", "Due", "Status",
		"Subtotal", "Discount", "Loading", "Tax", "Total", "Paid", "Balance",
	}
	paymentHeadings = []any{"Invoice", "Date", "Method", "Status", "Amount", "Transaction ID", "Notes"}
)

//go:generate mockgen -source=service.go -destination=lister_mock.go -package=export
type InvoiceLister interface {
	Scoped(ctx context.Context, a auth.Actor, filter invoice.ListFilter) ([]*invoice.Invoice, error)
}

// Service builds the invoice register workbook.
type Service struct {
	invoices InvoiceLister
}

// NewService creates a new export Service.
func NewService(invoices InvoiceLister) *Service {
	return &Service{invoices: invoices}
}

// Export writes an XLSX register of the invoices matching filter to w and
// returns them so callers can summarise what was exported.
func (s *Service) Export(ctx context.Context, a auth.Actor, filter invoice.ListFilter, w io.Writer) ([]*invoice.Invoice, error) {
	invoices, err := s.invoices.Scoped(ctx, a, filter)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}

	f, err := workbook(invoices)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return invoices, nil
}

func workbook(invoices []*invoice.Invoice) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetInvoices); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	if _, err := f.NewSheet(SheetPayments); err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	if err := writeRow(f, SheetInvoices, 1, invoiceHeadings); err != nil {
		return nil, err
	}

	if err := writeRow(f, SheetPayments, 1, paymentHeadings); err != nil {
		return nil, err
	}

	payRow := 2

	for i, inv := range invoices {
		if err := writeRow(f, SheetInvoices, i+2, invoiceRow(inv)); err != nil {
			return nil, err
		}

		for _, p := range inv.Payments {
			if err := writeRow(f, SheetPayments, payRow, paymentRow(inv, p)); err != nil {
				return nil, err
			}

			payRow++
		}
	}

	for _, sheet := range []struct {
		name       string
		from, to   string
		headerLast string
		rows       int
	}{
		{SheetInvoices, "G", "M", "M1", len(invoices) + 1},
		{SheetPayments, "E", "E", "G1", payRow - 1},
	} {
		if err := f.SetCellStyle(sheet.name, "A1", sheet.headerLast, bold); err != nil {
			return nil, fmt.Errorf("styling %s header: %w", sheet.name, err)
		}

		if sheet.rows < 2 {
			continue
		}

		if err := f.SetCellStyle(sheet.name, sheet.from+"2", fmt.Sprintf("%s%d", sheet.to, sheet.rows), money); err != nil {
			return nil, fmt.Errorf("styling %s amounts: %w", sheet.name, err)
		}
	}

	return f, nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}

	return nil
}

func invoiceRow(inv *invoice.Invoice) []any {
	return []any{
		inv.Number,
		inv.Customer.Name,
		inv.Customer.Phone,
		inv.CreatedAt.Format(dateLayout),
		inv.DueDate.Format(dateLayout),
		string(inv.Status),
		amount(inv.Totals.Subtotal),
		amount(inv.Totals.DiscountAmount),
		amount(inv.Charges.LoadingCharges),
		amount(inv.Totals.TaxAmount),
		amount(inv.Totals.TotalAmount),
		amount(inv.PaidAmount),
		amount(inv.BalanceAmount),
	}
}

func paymentRow(inv *invoice.Invoice, p invoice.Payment) []any {
	return []any{
		inv.Number,
		p.PaymentDate.Format(dateLayout),
		string(p.Method),
		string(p.Status),
		amount(p.Amount),
		p.TransactionID,
		p.Notes,
	}
}

// amount rounds to paise for the cell; the workbook is a report, not a ledger.
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// GenerateSummary renders a plain-text digest of exported invoices, one line
// per invoice followed by the totals.
func (s *Service) GenerateSummary(invoices []*invoice.Invoice) string {
	var (
		sb                   strings.Builder
		total, paid, balance decimal.Decimal
	)

	for _, inv := range invoices {
		fmt.Fprintf(&sb, "* %s | %s | %s | %s | paid %s | due %s | %s\n",
			inv.Number,
			inv.CreatedAt.Format(dateLayout),
			inv.Customer.Name,
			document.Format(inv.Totals.TotalAmount),
			document.Format(inv.PaidAmount),
			document.Format(inv.BalanceAmount),
			inv.Status,
		)

		if inv.Status == invoice.StatusCancelled {
			continue
		}

		total = total.Add(inv.Totals.TotalAmount)
		paid = paid.Add(inv.PaidAmount)
		balance = balance.Add(inv.BalanceAmount)
	}

	fmt.Fprintf(&sb, "%d invoices | total %s | paid %s | outstanding %s\n",
		len(invoices), document.Format(total), document.Format(paid), document.Format(balance))

	return sb.String()
}
