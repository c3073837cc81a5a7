package view

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/buildestimate/internal/user"
)

// LoggedInMsg is emitted once the credentials check out.
type LoggedInMsg struct {
	User *user.User
}

type LoginModel struct {
	userService *user.Service

	form *huh.Form
	err  error
	busy bool
}

func NewLoginModel(svc *user.Service) LoginModel {
	m := LoginModel{userService: svc}
	m.form = m.buildForm()

	return m
}

// Values are read back with GetString: the model is copied on every update,
// so pointers into it would go stale.
func (m LoginModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("email").
				Title("Email").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("email is required")
					}
					return nil
				}),
			huh.NewInput().
				Key("password").
				Title("Password").
				EchoMode(huh.EchoModePassword),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (m LoginModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		m.busy = false

		if res.err != nil {
			m.err = res.err
			m.form = m.buildForm()

			return m, m.form.Init()
		}

		u := res.user

		return m, func() tea.Msg { return LoggedInMsg{User: u} }
	}

	if m.busy {
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	m.busy = true

	return m, m.loginCmd(m.form.GetString("email"), m.form.GetString("password"))
}

func (m LoginModel) View() string {
	body := m.form.View()
	if m.busy {
		body = "Signing in..."
	}

	if m.err != nil {
		body += "\n\n" + errorStyle(fmt.Sprintf("Error: %v", m.err))
	}

	return lipgloss.NewStyle().Padding(2).Render("BuildEstimate: sign in\n\n" + body)
}

type loginResultMsg struct {
	user *user.User
	err  error
}

func (m LoginModel) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		s, err := m.userService.Login(ctx, email, password)
		if err != nil {
			return loginResultMsg{err: err}
		}

		if !s.User.Actor().IsTrader() {
			return loginResultMsg{err: fmt.Errorf("the console is for traders")}
		}

		return loginResultMsg{user: s.User}
	}
}
