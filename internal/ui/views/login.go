package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aknott/kumo/internal/auth"
	"github.com/aknott/kumo/internal/ui/theme"
)

// loginField identifies the focused form field
type loginField int

const (
	fieldEmail loginField = iota
	fieldPassword
)

// sessionResultMsg carries the outcome of a sign-in/sign-up attempt
type sessionResultMsg struct {
	identity *auth.Identity
	err      error
}

// LoginView is the account form: sign-in, sign-up, sign-out
type LoginView struct {
	provider auth.Provider
	width    int
	height   int

	email    textinput.Model
	password textinput.Model
	focused  loginField

	// signup toggles between sign-in and sign-up submission
	signup  bool
	busy    bool
	formErr string
}

// NewLoginView creates a new login view
func NewLoginView(provider auth.Provider) LoginView {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return LoginView{
		provider: provider,
		email:    email,
		password: password,
	}
}

// Init initializes the login view
func (v LoginView) Init() tea.Cmd {
	return textinput.Blink
}

// SetSize sets the view dimensions
func (v LoginView) SetSize(width, height int) LoginView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode returns whether the view is capturing text input.
// The form captures everything while signed out.
func (v LoginView) IsInputMode() bool {
	return v.provider.Identity() == nil
}

// Update handles messages
func (v LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionResultMsg:
		// The root model learns about the session through the
		// provider's change stream; here only the form is settled
		v.busy = false
		if msg.err != nil {
			v.formErr = msg.err.Error()
			return v, nil
		}
		v.formErr = ""
		v.password.SetValue("")
		return v, nil

	case tea.KeyMsg:
		if v.provider.Identity() != nil {
			return v.handleSignedIn(msg)
		}
		return v.handleForm(msg)
	}

	return v, nil
}

// handleSignedIn handles keys while a session is active
func (v LoginView) handleSignedIn(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "o":
		return v, func() tea.Msg {
			return SignOutRequest{}
		}
	}
	return v, nil
}

// handleForm handles keys on the sign-in/sign-up form
func (v LoginView) handleForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.busy {
		return v, nil
	}

	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		if v.focused == fieldEmail {
			v.focused = fieldPassword
			v.email.Blur()
			v.password.Focus()
		} else {
			v.focused = fieldEmail
			v.password.Blur()
			v.email.Focus()
		}
		return v, textinput.Blink

	case "ctrl+s":
		// Toggle between sign-in and sign-up
		v.signup = !v.signup
		v.formErr = ""
		return v, nil

	case "esc":
		// The form captures every key while signed out, so esc is the
		// way back to the rest of the app
		return v, func() tea.Msg {
			return BackRequest{}
		}

	case "enter":
		email := strings.TrimSpace(v.email.Value())
		password := v.password.Value()
		v.busy = true
		v.formErr = ""
		return v, v.submit(email, password)
	}

	var cmd tea.Cmd
	if v.focused == fieldEmail {
		v.email, cmd = v.email.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return v, cmd
}

// submit performs the auth call off the update loop
func (v LoginView) submit(email, password string) tea.Cmd {
	provider := v.provider
	signup := v.signup
	return func() tea.Msg {
		var identity *auth.Identity
		var err error
		if signup {
			identity, err = provider.SignUp(context.Background(), email, password)
		} else {
			identity, err = provider.SignIn(context.Background(), email, password)
		}
		return sessionResultMsg{identity: identity, err: err}
	}
}

// View renders the account form or the session summary
func (v LoginView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	if identity := v.provider.Identity(); identity != nil {
		var lines []string
		lines = append(lines, styles.PanelTitle.Render("Account"))
		lines = append(lines, "")
		lines = append(lines, "Signed in as "+lipgloss.NewStyle().
			Foreground(t.Success).Bold(true).Render(identity.Email))
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).
			Render("Your todos sync while signed in."))
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).
			Render("enter: sign out"))
		return styles.Panel.Render(strings.Join(lines, "\n"))
	}

	title := "Sign in"
	action := "ctrl+s: switch to sign up"
	if v.signup {
		title = "Sign up"
		action = "ctrl+s: switch to sign in"
	}

	var lines []string
	lines = append(lines, styles.PanelTitle.Render(title))
	lines = append(lines, "")
	lines = append(lines, v.renderField("Email", v.email, v.focused == fieldEmail))
	lines = append(lines, v.renderField("Password", v.password, v.focused == fieldPassword))

	if v.formErr != "" {
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Error).Render(v.formErr))
	}
	if v.busy {
		lines = append(lines, "")
		lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).Render("Working..."))
	}

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Foreground(t.Subtle).
		Render("tab: next field • enter: submit • esc: back • "+action))

	return styles.Panel.Render(strings.Join(lines, "\n"))
}

// renderField renders one labelled form input
func (v LoginView) renderField(label string, input textinput.Model, focused bool) string {
	styles := theme.Current.Styles

	box := styles.Input
	if focused {
		box = styles.InputFocused
	}

	return styles.Label.Render(label) + "\n" + box.Render(input.View())
}
