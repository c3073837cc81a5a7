package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/buildestimate/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/buildestimate/internal/auth"
	"github.com/MrJamesThe3rd/buildestimate/internal/config"
	"github.com/MrJamesThe3rd/buildestimate/internal/conversion"
	conversionStore "github.com/MrJamesThe3rd/buildestimate/internal/conversion/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/database"
	"github.com/MrJamesThe3rd/buildestimate/internal/document"
	"github.com/MrJamesThe3rd/buildestimate/internal/estimate"
	estimateStore "github.com/MrJamesThe3rd/buildestimate/internal/estimate/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/event"
	"github.com/MrJamesThe3rd/buildestimate/internal/export"
	"github.com/MrJamesThe3rd/buildestimate/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/buildestimate/internal/invoice/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/lock"
	"github.com/MrJamesThe3rd/buildestimate/internal/logger"
	"github.com/MrJamesThe3rd/buildestimate/internal/sequence"
	sequenceStore "github.com/MrJamesThe3rd/buildestimate/internal/sequence/store"
	"github.com/MrJamesThe3rd/buildestimate/internal/user"
	userStore "github.com/MrJamesThe3rd/buildestimate/internal/user/store"
)

const logFile = "buildestimate-tui.log"

type model struct {
	userService       *user.Service
	estimateService   *estimate.Service
	invoiceService    *invoice.Service
	conversionService *conversion.Service
	exportService     *export.Service

	common      view.CommonModel
	trader      string
	currentView View

	loginView    view.LoginModel
	estimateView view.EstimatesModel
	invoiceView  view.InvoiceModel
	exportView   view.ExportModel
}

type View int

const (
	ViewLogin    View = 0
	ViewMenu     View = 1
	ViewEstimate View = 2
	ViewInvoice  View = 3
	ViewExport   View = 4
)

type services struct {
	users       *user.Service
	estimates   *estimate.Service
	invoices    *invoice.Service
	conversions *conversion.Service
	exports     *export.Service
}

func initialModel(svc services) model {
	return model{
		userService:       svc.users,
		estimateService:   svc.estimates,
		invoiceService:    svc.invoices,
		conversionService: svc.conversions,
		exportService:     svc.exports,
		currentView:       ViewLogin,
		loginView:         view.NewLoginModel(svc.users),
	}
}

func (m model) Init() tea.Cmd {
	return m.loginView.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.currentView == ViewMenu {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "1":
				m.currentView = ViewEstimate
				m.estimateView = view.NewEstimatesModel(m.common, m.estimateService, m.conversionService)

				return m, m.estimateView.Init()
			case "2":
				m.currentView = ViewInvoice
				m.invoiceView = view.NewInvoiceModel(m.common, m.invoiceService)

				return m, m.invoiceView.Init()
			case "3":
				m.currentView = ViewExport
				m.exportView = view.NewExportModel(m.common, m.exportService)

				return m, m.exportView.Init()
			}
		}
	case view.LoggedInMsg:
		m.common = view.CommonModel{Actor: msg.User.Actor()}
		m.trader = msg.User.CompanyName
		m.currentView = ViewMenu

		return m, nil
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	}

	switch m.currentView {
	case ViewLogin:
		var newModel tea.Model
		newModel, cmd = m.loginView.Update(msg)
		m.loginView = newModel.(view.LoginModel)
	case ViewEstimate:
		var newModel tea.Model
		newModel, cmd = m.estimateView.Update(msg)
		m.estimateView = newModel.(view.EstimatesModel)
	case ViewInvoice:
		var newModel tea.Model
		newModel, cmd = m.invoiceView.Update(msg)
		m.invoiceView = newModel.(view.InvoiceModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) View() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewMenu:
		return lipgloss.NewStyle().Padding(2).Render(
			"BuildEstimate: " + m.trader + "\n\n" +
				"1. Estimates\n" +
				"2. Invoices & Payments\n" +
				"3. Export Invoices\n\n" +
				"q. Quit",
		)
	case ViewEstimate:
		return m.estimateView.View()
	case ViewInvoice:
		return m.invoiceView.View()
	case ViewExport:
		return m.exportView.View()
	}

	return "Unknown View"
}

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	if err := logger.Setup(logger.Config{Level: cfg.Log.Level, Format: "json", Output: f}); err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	document.RegisterUnits(cfg.Units.Extra)

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())

	dispatcher := event.NewDispatcher(logger.WithComponent("dispatcher"), 64,
		event.NewLogSink(logger.WithComponent("events")))
	go dispatcher.Run(ctx)

	defer func() {
		cancel()
		dispatcher.Wait()
	}()

	numbers := sequence.NewService(sequenceStore.New(db))
	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	users := user.NewService(userStore.New(db), tokens, cfg.Phone.Region)
	invoices := invoice.NewService(invoiceStore.New(db), numbers, users, dispatcher, invoice.Config{
		DefaultDueIn: cfg.DefaultDueIn(),
		UPIID:        cfg.Payment.UPIID,
		MerchantName: cfg.Payment.MerchantName,
	})

	// The console runs on a single machine, so conversion needs no distributed lock.
	conversions := conversion.NewService(conversionStore.New(db), numbers, lock.Noop{}, dispatcher,
		cfg.DefaultDueIn(), logger.WithComponent("conversion"))

	p := tea.NewProgram(initialModel(services{
		users:       users,
		estimates:   estimate.NewService(estimateStore.New(db), numbers, users, dispatcher),
		invoices:    invoices,
		conversions: conversions,
		exports:     export.NewService(invoices),
	}))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}
