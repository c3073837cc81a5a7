package view

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
)

type exportState int

const (
	exportStatePeriod exportState = iota
	exportStateCustomRange
	exportStatePath
	exportStateExporting
	exportStateResult
)

type ExportModel struct {
	CommonModel
	exportService *export.Service

	state  exportState
	err    error
	period Period
	filter invoice.ListFilter
	now    func() time.Time

	form    *huh.Form
	path    string
	spinner spinner.Model
	summary string
	file    string
}

func NewExportModel(common CommonModel, svc *export.Service) ExportModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return ExportModel{
		CommonModel:   common,
		exportService: svc,
		state:         exportStatePeriod,
		period:        PeriodThisMonth,
		now:           time.Now,
		form:          newPeriodForm(PeriodThisMonth),
		path:          "./exports",
		spinner:       s,
	}
}

func (m ExportModel) Title() string { return "Export Invoices" }

func (m ExportModel) ShortHelp() string {
	switch m.state {
	case exportStateResult:
		return "Esc: back to menu"
	case exportStateExporting:
		return "Exporting..."
	}
	return "Esc: back | Enter: confirm"
}

func (m ExportModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m ExportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case exportStatePeriod:
		return m.updatePeriod(msg)
	case exportStateCustomRange:
		return m.updateCustomRange(msg)
	case exportStatePath:
		return m.updatePath(msg)
	case exportStateExporting:
		return m.updateExporting(msg)
	case exportStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m ExportModel) updatePeriod(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if p, ok := m.form.Get("period").(Period); ok {
		m.period = p
	}

	if m.period == PeriodCustom {
		m.state = exportStateCustomRange
		m.err = nil
		m.form = newCustomRangeForm()
		return m, m.form.Init()
	}

	m.filter = PeriodFilter(m.period, m.now())
	return m.toPath()
}

func (m ExportModel) updateCustomRange(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.toPeriod()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	filter, err := CustomRangeFilter(m.form.GetString("start"), m.form.GetString("end"))
	if err != nil {
		m.err = err
		m.form = newCustomRangeForm()
		return m, m.form.Init()
	}

	m.err = nil
	m.filter = filter
	return m.toPath()
}

func (m ExportModel) toPeriod() (tea.Model, tea.Cmd) {
	m.state = exportStatePeriod
	m.err = nil
	m.form = newPeriodForm(m.period)
	return m, m.form.Init()
}

func (m ExportModel) toPath() (tea.Model, tea.Cmd) {
	m.state = exportStatePath
	m.form = m.buildPathForm()
	return m, m.form.Init()
}

func (m ExportModel) updatePath(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m.toPeriod()
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	if p := m.form.GetString("path"); p != "" {
		m.path = p
	}

	m.state = exportStateExporting
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.runExportCmd(m.filter, m.path))
}

func (m ExportModel) updateExporting(msg tea.Msg) (tea.Model, tea.Cmd) {
	if result, ok := msg.(exportResultMsg); ok {
		m.state = exportStateResult
		if result.err != nil {
			m.err = result.err
		}
		m.summary = result.body
		m.file = result.file
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m ExportModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if keyMsg.Type == tea.KeyEsc {
			return m, Back
		}
	}
	return m, nil
}

func (m ExportModel) buildPathForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("path").
				Title("Output Path").
				Description("The workbook is written here; the directory is created if needed").
				Placeholder("./exports").
				Value(new(m.path)),
		),
	).WithWidth(50).WithShowHelp(false)
}

func (m ExportModel) View() string {
	switch m.state {
	case exportStatePeriod, exportStatePath:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())

	case exportStateCustomRange:
		body := m.form.View()
		if m.err != nil {
			body = errorStyle(m.err.Error()) + "\n\n" + body
		}
		return lipgloss.NewStyle().Padding(1).Render(body)

	case exportStateExporting:
		return lipgloss.NewStyle().Padding(1).Render(
			fmt.Sprintf("%s Building invoice register (%s)...", m.spinner.View(), m.period),
		)

	case exportStateResult:
		return m.viewResult()
	}

	return ""
}

func (m ExportModel) viewResult() string {
	if m.err != nil {
		return lipgloss.NewStyle().Padding(1).Render(
			lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v", m.err)),
		)
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("46")).
		Render("Export Complete!")

	saved := fmt.Sprintf("%s saved to %s", m.period, m.file)

	return lipgloss.NewStyle().Padding(1).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			saved,
			"",
			"Summary:",
			"",
			m.summary,
		),
	)
}

type exportResultMsg struct {
	file string
	body string
	err  error
}

const exportTimeout = 2 * time.Minute

func (m ExportModel) runExportCmd(filter invoice.ListFilter, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return exportResultMsg{err: fmt.Errorf("creating %s: %w", dir, err)}
		}

		name := filepath.Join(dir, fmt.Sprintf("invoices_%s.xlsx", time.Now().Format("20060102_150405")))

		f, err := os.Create(name)
		if err != nil {
			return exportResultMsg{err: err}
		}

		invoices, err := m.exportService.Export(ctx, m.Actor, filter, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}

		if err != nil {
			_ = os.Remove(name)
			return exportResultMsg{err: err}
		}

		return exportResultMsg{file: name, body: m.exportService.GenerateSummary(invoices)}
	}
}
