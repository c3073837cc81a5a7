package view

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
)

const listLimit = 100

var estimateFilters = []*estimate.Status{
	nil,
	new(estimate.StatusDraft),
	new(estimate.StatusSent),
	new(estimate.StatusAccepted),
	new(estimate.StatusConverted),
	new(estimate.StatusExpired),
}

type EstimatesModel struct {
	CommonModel
	estimateService   *estimate.Service
	conversionService *conversion.Service

	table     table.Model
	estimates []*estimate.Estimate
	filterIdx int

	loading bool
	err     error
	status  string
}

func NewEstimatesModel(common CommonModel, svc *estimate.Service, conv *conversion.Service) EstimatesModel {
	t := newTable([]table.Column{
		{Title: "Number", Width: 10},
		{Title: "Customer", Width: 24},
		{Title: "Status", Width: 10},
		{Title: "Valid Until", Width: 12},
		{Title: "Items", Width: 6},
		{Title: "Total", Width: 14},
	})

	return EstimatesModel{
		CommonModel:       common,
		estimateService:   svc,
		conversionService: conv,
		table:             t,
		loading:           true,
	}
}

func (m EstimatesModel) Title() string { return "Estimates" }

func (m EstimatesModel) ShortHelp() string {
	return "Esc: back | s: send | x: check expiry | c: convert to invoice | f: filter | r: refresh"
}

func (m EstimatesModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m EstimatesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadEstimatesMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}

		m.err = nil
		m.estimates = msg.estimates
		m.refreshTable()

		return m, nil

	case estimateActionMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}

		m.status = msg.done

		return m, m.loadCmd()

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, Back
		case "r":
			m.loading = true
			return m, m.loadCmd()
		case "f":
			m.filterIdx = (m.filterIdx + 1) % len(estimateFilters)
			m.loading = true

			return m, m.loadCmd()
		case "s":
			return m, m.actionCmd("sent", m.estimateService.Send)
		case "x":
			return m, m.actionCmd("checked", m.estimateService.CheckExpiry)
		case "c":
			return m, m.convertCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m EstimatesModel) View() string {
	if m.loading {
		return lipgloss.NewStyle().Padding(2).Render("Loading estimates...")
	}

	if m.err != nil {
		return lipgloss.NewStyle().Padding(2).Render(errorStyle(fmt.Sprintf("Error: %v", m.err)))
	}

	filter := "All"
	if f := estimateFilters[m.filterIdx]; f != nil {
		filter = string(*f)
	}

	header := fmt.Sprintf("Filter: [f] Status: %s | %d estimates", activeStyle(filter), len(m.estimates))

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if e := m.selected(); e != nil {
		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel(e.Number, estimateDetail(e)))
	}

	if m.status != "" {
		content = lipgloss.NewStyle().Faint(true).Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content + "\n\n" + m.ShortHelp())
}

func estimateDetail(e *estimate.Estimate) string {
	s := fmt.Sprintf("Customer: %s\nPhone:    %s\n\n", e.Customer.Name, e.Customer.Phone)

	for _, it := range e.Items {
		s += fmt.Sprintf("%s  %s %s x %s = %s\n",
			it.Name, it.Quantity.String(), it.Unit.Label(), FormatAmount(it.UnitPrice), FormatAmount(it.TotalPrice))
	}

	s += fmt.Sprintf("\nSubtotal: %s\nTaxable:  %s\nTax:      %s\nTotal:    %s",
		FormatAmount(e.Totals.Subtotal),
		FormatAmount(e.Totals.TaxableAmount),
		FormatAmount(e.Totals.TaxAmount),
		FormatAmount(e.Totals.TotalAmount),
	)

	if e.RejectionReason != "" {
		s += "\n\nRejected: " + e.RejectionReason
	}

	return s
}

func (m EstimatesModel) selected() *estimate.Estimate {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.estimates) {
		return nil
	}

	return m.estimates[idx]
}

func (m *EstimatesModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.estimates))
	for _, e := range m.estimates {
		rows = append(rows, table.Row{
			e.Number,
			e.Customer.Name,
			string(e.Status),
			FormatDate(e.ValidUntil),
			fmt.Sprint(len(e.Items)),
			FormatAmount(e.Totals.TotalAmount),
		})
	}

	m.table.SetRows(rows)
}

// Messages

type loadEstimatesMsg struct {
	estimates []*estimate.Estimate
	err       error
}

func (m EstimatesModel) loadCmd() tea.Cmd {
	params := estimate.ListParams{Status: estimateFilters[m.filterIdx], Limit: listLimit}

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		page, err := m.estimateService.List(ctx, m.Actor, params)
		if err != nil {
			return loadEstimatesMsg{err: err}
		}

		return loadEstimatesMsg{estimates: page.Estimates}
	}
}

type transition func(ctx context.Context, a auth.Actor, id uuid.UUID) (*estimate.Estimate, error)

type estimateActionMsg struct {
	done string
	err  error
}

func (m EstimatesModel) actionCmd(verb string, op transition) tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	id, number := e.ID, e.Number

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		updated, err := op(ctx, m.Actor, id)
		if err != nil {
			return estimateActionMsg{err: err}
		}

		return estimateActionMsg{done: fmt.Sprintf("%s %s, now %s", number, verb, updated.Status)}
	}
}

func (m EstimatesModel) convertCmd() tea.Cmd {
	e := m.selected()
	if e == nil {
		return nil
	}

	id := e.ID

	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		res, err := m.conversionService.Convert(ctx, m.Actor, id, conversion.Params{})
		if err != nil {
			return estimateActionMsg{err: err}
		}

		return estimateActionMsg{done: fmt.Sprintf("%s converted to %s, due %s",
			res.Estimate.Number, res.Invoice.Number, FormatDate(res.Invoice.DueDate))}
	}
}
