package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

type invoiceState int

const (
	invoiceStateBrowse invoiceState = iota
	invoiceStatePayment
)

var invoiceFilters = []*invoice.Status{
	nil,
	new(invoice.StatusSent),
	new(invoice.StatusPartialPaid),
	new(invoice.StatusOverdue),
	new(invoice.StatusPaid),
}

type InvoiceModel struct {
	CommonModel
	invoiceService *invoice.Service

	state     invoiceState
	table     table.Model
	invoices  []*invoice.Invoice
	filterIdx int
	form      *huh.Form

	loading bool
	err     error
	status  string
}

func NewInvoiceModel(common CommonModel, svc *invoice.Service) InvoiceModel {
	t := newTable([]table.Column{
		{Title: "Number", Width: 10},
		{Title: "Customer", Width: 22},
		{Title: "Status", Width: 13},
		{Title: "Due", Width: 12},
		{Title: "Total", Width: 12},
		{Title: "Paid", Width: 12},
		{Title: "Balance", Width: 12},
	})

	return InvoiceModel{
		CommonModel:    common,
		invoiceService: svc,
		table:          t,
		loading:        true,
	}
}

func (m InvoiceModel) Title() string { return "Invoices" }

func (m InvoiceModel) ShortHelp() string {
	if m.state == invoiceStatePayment {
		return "Navigate form | Esc: cancel"
	}

	return "Esc: back | p: record payment | s: send | x: cancel invoice | l: UPI link | f: filter | r: refresh"
}

func (m InvoiceModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m InvoiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadInvoicesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.invoices = msg.invoices
		m.refreshTable()

		return m, nil

	case invoiceActionMsg:
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.done

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	if m.state == invoiceStatePayment {
		return m.updatePayment(msg)
	}

	return m.updateBrowse(msg)
}

func (m InvoiceModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(invoiceFilters)
			m.loading = true

			return m, m.loadCmd()
		case "p":
			return m.enterPaymentMode()
		case "s":
			return m, m.simpleCmd("sent", m.invoiceService.Send)
		case "x":
			return m, m.simpleCmd("cancelled", m.invoiceService.Cancel)
		case "l":
			return m, m.paymentLinkCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m InvoiceModel) enterPaymentMode() (tea.Model, tea.Cmd) {
	inv := m.selected()
	if inv == nil {
		return m, nil
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("amount").
				Title("Amount").
				Value(new(inv.BalanceAmount.StringFixed(2))).
				Validate(func(s string) error {
					d, err := decimal.NewFromString(strings.TrimSpace(s))
					if err != nil {
						return fmt.Errorf("not a number")
					}

					if !d.IsPositive() {
						return fmt.Errorf("must be greater than zero")
					}

					return nil
				}),

			huh.NewSelect[invoice.PaymentMethod]().
				Key("method").
				Title("Method").
				Options(
					huh.NewOption("Cash", invoice.MethodCash),
					huh.NewOption("UPI", invoice.MethodUPI),
					huh.NewOption("Bank transfer", invoice.MethodBankTransfer),
					huh.NewOption("Cheque", invoice.MethodCheque),
					huh.NewOption("Card", invoice.MethodCard),
				).
				Value(new(invoice.MethodCash)),

			huh.NewInput().
				Key("transaction_id").
				Title("Transaction ID").
				Placeholder("optional"),

			huh.NewInput().
				Key("notes").
				Title("Notes"),
		),
	).WithWidth(45).WithShowHelp(false)

	m.state = invoiceStatePayment
	m.table.Blur()

	return m, m.form.Init()
}

func (m InvoiceModel) updatePayment(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.state = invoiceStateBrowse
		m.form = nil
		m.table.Focus()

		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	return m, m.addPaymentCmd()
}

func (m InvoiceModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading invoices...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "All"
	if f := invoiceFilters[m.filterIdx]; f != nil {
		filter = string(*f)
	}

	header := fmt.Sprintf("Filter: [f] Status: %s | %d invoices", activeStyle(filter), len(m.invoices))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if inv := m.selected(); inv != nil {
		body := invoiceDetail(inv)
		title := inv.Number

		if m.state == invoiceStatePayment && m.form != nil {
			title = "Record payment for " + inv.Number
			body = fmt.Sprintf("Outstanding: %s\n\n%s", FormatAmount(inv.BalanceAmount), m.form.View())
		}

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel(title, body))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + m.ShortHelp())
}

func invoiceDetail(inv *invoice.Invoice) string {
	s := fmt.Sprintf("Customer: %s\nDue:      %s\n", inv.Customer.Name, FormatDate(inv.DueDate))

	if len(inv.Payments) == 0 {
		return s + "\nNo payments recorded."
	}

	s += "\nPayments:\n"
	for _, p := range inv.Payments {
		s += fmt.Sprintf("%s  %-13s %-9s %s\n", FormatDate(p.PaymentDate), p.Method, p.Status, FormatAmount(p.Amount))
	}

	return s
}

func (m InvoiceModel) selected() *invoice.Invoice {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.invoices) {
		return nil
	}

	return m.invoices[idx]
}

func (m *InvoiceModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.invoices))
	for _, inv := range m.invoices {
		rows = append(rows, table.Row{
			inv.Number,
			inv.Customer.Name,
			string(inv.Status),
			FormatDate(inv.DueDate),
			FormatAmount(inv.Totals.TotalAmount),
			FormatAmount(inv.PaidAmount),
			FormatAmount(inv.BalanceAmount),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadInvoicesMsg struct {
	invoices []*invoice.Invoice
	err      error
}

func (m InvoiceModel) loadCmd() tea.Cmd {
	params := invoice.ListParams{Status: invoiceFilters[m.filterIdx], Limit: listLimit}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.invoiceService.List(ctx, m.Actor, params)
		if err != nil {
			return loadInvoicesMsg{err: err}
		}

		return loadInvoicesMsg{invoices: page.Invoices}
	}
}

type invoiceActionMsg struct {
	done string
	err  error
}

type invoiceOp func(ctx context.Context, a auth.Actor, id uuid.UUID) (*invoice.Invoice, error)

func (m InvoiceModel) simpleCmd(verb string, op invoiceOp) tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	id, number := inv.ID, inv.Number

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		if _, err := op(ctx, m.Actor, id); err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{done: fmt.Sprintf("%s %s", number, verb)}
	}
}

func (m InvoiceModel) addPaymentCmd() tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	id := inv.ID
	method, _ := m.form.Get("method").(invoice.PaymentMethod)
	amount, err := decimal.NewFromString(strings.TrimSpace(m.form.GetString("amount")))
	params := invoice.PaymentParams{
		Amount:        amount,
		Method:        method,
		TransactionID: m.form.GetString("transaction_id"),
		Notes:         m.form.GetString("notes"),
	}

	return func() tea.Msg {
		if err != nil {
			return invoiceActionMsg{err: fmt.Errorf("amount: %w", err)}
		}

		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := m.invoiceService.AddPayment(ctx, m.Actor, id, params)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{done: fmt.Sprintf("%s: paid %s, balance %s, now %s",
			updated.Number, FormatAmount(updated.PaidAmount), FormatAmount(updated.BalanceAmount), updated.Status)}
	}
}

func (m InvoiceModel) paymentLinkCmd() tea.Cmd {
	inv := m.selected()
	if inv == nil {
		return nil
	}

	id := inv.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		link, err := m.invoiceService.PaymentLink(ctx, m.Actor, id)
		if err != nil {
			return invoiceActionMsg{err: err}
		}

		return invoiceActionMsg{done: link}
	}
}
