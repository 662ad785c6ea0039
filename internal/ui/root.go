package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aknott/kumo/internal/app"
	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/ui/theme"
	"github.com/aknott/kumo/internal/ui/views"
)

// Debug logging (enable by setting KUMO_DEBUG=1)
var rootDebugLog *os.File

func init() {
	if os.Getenv("KUMO_DEBUG") == "1" {
		rootDebugLog, _ = os.OpenFile("/tmp/kumo-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	}
}

func rootDebugf(format string, args ...interface{}) {
	if rootDebugLog != nil {
		fmt.Fprintf(rootDebugLog, format+"\n", args...)
		rootDebugLog.Sync()
	}
}

// RootModel is the main application model that manages views
type RootModel struct {
	app    *app.App
	keys   KeyMap
	help   help.Model
	width  int
	height int

	currentView  View
	listView     views.ListView
	calendarView views.CalendarView
	tagsView     views.TagsView
	loginView    views.LoginView
	helpVisible  bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates a new root model
func NewRootModel(application *app.App) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		app:          application,
		keys:         DefaultKeyMap(),
		help:         h,
		currentView:  ViewList,
		listView:     views.NewListView(application.Store),
		calendarView: views.NewCalendarView(application.Store),
		tagsView:     views.NewTagsView(application.Store),
		loginView:    views.NewLoginView(application.Auth),
	}
}

// WithStartView sets the initial view by name. Unknown names keep the
// list view.
func (m RootModel) WithStartView(name string) RootModel {
	switch strings.ToLower(name) {
	case "calendar":
		m.currentView = ViewCalendar
	case "tags":
		m.currentView = ViewTags
	case "account", "login":
		m.currentView = ViewLogin
	default:
		m.currentView = ViewList
	}
	return m
}

// Init initializes the model
func (m RootModel) Init() tea.Cmd {
	rootDebugf("RootModel.Init()")
	return tea.Batch(
		m.listView.Init(),
		m.waitSnapshot(),
		m.waitIdentity(),
		m.notifyDue(),
	)
}

// waitSnapshot blocks on the bridge's snapshot channel and converts
// deliveries into tea messages
func (m RootModel) waitSnapshot() tea.Cmd {
	b := m.app.Bridge
	return func() tea.Msg {
		snap, ok := <-b.Snapshots()
		if !ok {
			return nil
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// waitIdentity blocks on the auth provider's change stream and converts
// session transitions into tea messages
func (m RootModel) waitIdentity() tea.Cmd {
	p := m.app.Auth
	return func() tea.Msg {
		id, ok := <-p.Changes()
		if !ok {
			return nil
		}
		if id == nil {
			return SignedOutMsg{}
		}
		return SignedInMsg{Identity: *id}
	}
}

// notifyDue fires desktop reminders at startup: one for the overdue
// count, one for the next todo coming due within a day
func (m RootModel) notifyDue() tea.Cmd {
	st := m.app.Store
	notifier := m.app.Notifier
	return func() tea.Msg {
		now := time.Now()
		count := 0
		var next *model.Todo
		for _, todo := range st.Todos() {
			if todo.IsOverdue(now) {
				count++
				continue
			}
			if todo.Completed || todo.DueDate == nil {
				continue
			}
			if todo.DueDate.Sub(now) < 24*time.Hour {
				if next == nil || todo.DueDate.Before(*next.DueDate) {
					t := todo
					next = &t
				}
			}
		}
		if count > 0 {
			notifier.SendOverdue(count)
		}
		if next != nil {
			notifier.SendDueReminder(next.Text, next.DueDate.Sub(now))
		}
		return nil
	}
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	rootDebugf("RootModel.Update received msg type: %T", msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

		// Reserve space for header and footer
		contentHeight := m.height - 4
		m.listView = m.listView.SetSize(m.width, contentHeight)
		m.calendarView = m.calendarView.SetSize(m.width, contentHeight)
		m.tagsView = m.tagsView.SetSize(m.width, contentHeight)
		m.loginView = m.loginView.SetSize(m.width, contentHeight)

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		isInputMode := false
		switch m.currentView {
		case ViewList:
			isInputMode = m.listView.IsInputMode()
		case ViewCalendar:
			isInputMode = m.calendarView.IsInputMode()
		case ViewTags:
			isInputMode = m.tagsView.IsInputMode()
		case ViewLogin:
			isInputMode = m.loginView.IsInputMode()
		}

		// Global keybindings
		switch {
		case key.Matches(msg, m.keys.Quit):
			// ctrl+c always quits, but 'q' only quits when not in input mode
			if msg.String() == "ctrl+c" || !isInputMode {
				return m, tea.Quit
			}

		case key.Matches(msg, m.keys.ThemeCycle):
			m.cycleTheme()
			return m, nil
		}

		// Skip other global keys when in input mode
		if isInputMode {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = !m.helpVisible
			m.help.ShowAll = m.helpVisible
			return m, nil

		case m.helpVisible && msg.String() == "esc":
			m.helpVisible = false
			m.help.ShowAll = false
			return m, nil

		// View switching (1-4 keys)
		case key.Matches(msg, m.keys.ListView):
			m.currentView = ViewList
			return m, m.listView.Init()
		case key.Matches(msg, m.keys.CalendarView):
			m.currentView = ViewCalendar
			return m, m.calendarView.Init()
		case key.Matches(msg, m.keys.TagsView):
			m.currentView = ViewTags
			return m, m.tagsView.Init()
		case key.Matches(msg, m.keys.LoginView):
			m.currentView = ViewLogin
			return m, m.loginView.Init()
		}

	case SnapshotMsg:
		applied := m.app.Bridge.Apply(msg.Snapshot)
		rootDebugf("snapshot applied=%v", applied)
		return m, m.waitSnapshot()

	case views.ToastMsg:
		m.statusMsg = msg.Message
		return m, nil

	case views.ToastErrMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case views.DaySelectedMsg:
		m.listView = m.listView.SetDay(msg.Day)
		m.calendarView = m.calendarView.SetDay(msg.Day)
		if msg.Day != "" {
			m.currentView = ViewList
			m.statusMsg = fmt.Sprintf("Showing %s", msg.Day)
		} else {
			m.statusMsg = "Date filter cleared"
		}
		return m, nil

	case SignedInMsg:
		if err := m.app.Bridge.SignedIn(context.Background(), msg.Identity.UID); err != nil {
			m.errorMsg = err.Error()
			return m, m.waitIdentity()
		}
		m.statusMsg = fmt.Sprintf("Signed in as %s", msg.Identity.Email)
		m.currentView = ViewList
		return m, m.waitIdentity()

	case SignedOutMsg:
		m.app.Bridge.SignedOut()
		m.statusMsg = "Signed out"
		return m, m.waitIdentity()

	case views.SignOutRequest:
		// The provider emits the transition; the change stream brings
		// it back as a SignedOutMsg that flips the bridge
		m.app.Auth.SignOut(context.Background())
		return m, nil

	case views.BackRequest:
		m.currentView = ViewList
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Message
		return m, nil

	case ThemeChangedMsg:
		m.statusMsg = fmt.Sprintf("Theme: %s", msg.ThemeName)
		return m, nil
	}

	// Delegate to current view
	rootDebugf("Delegating to view: %v", m.currentView)
	switch m.currentView {
	case ViewList:
		newListView, cmd := m.listView.Update(msg)
		m.listView = newListView.(views.ListView)
		cmds = append(cmds, cmd)
	case ViewCalendar:
		newCalendarView, cmd := m.calendarView.Update(msg)
		m.calendarView = newCalendarView.(views.CalendarView)
		cmds = append(cmds, cmd)
	case ViewTags:
		newTagsView, cmd := m.tagsView.Update(msg)
		m.tagsView = newTagsView.(views.TagsView)
		cmds = append(cmds, cmd)
	case ViewLogin:
		newLoginView, cmd := m.loginView.Update(msg)
		m.loginView = newLoginView.(views.LoginView)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var sections []string

	sections = append(sections, m.renderHeader())

	contentHeight := m.height - 4
	if m.errorMsg != "" || m.statusMsg != "" {
		contentHeight--
	}

	var content string
	if m.helpVisible {
		content = m.renderHelp()
	} else {
		switch m.currentView {
		case ViewList:
			content = m.listView.View()
		case ViewCalendar:
			content = m.calendarView.View()
		case ViewTags:
			content = m.tagsView.View()
		case ViewLogin:
			content = m.loginView.View()
		}
	}

	// Ensure content fills available space
	contentLines := strings.Count(content, "\n") + 1
	if contentLines < contentHeight {
		content += strings.Repeat("\n", contentHeight-contentLines)
	}
	sections = append(sections, content)

	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("kumo")

	viewStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	viewIndicator := viewStyle.Render(fmt.Sprintf("[%s]", m.currentView.String()))

	// Session indicator: email when signed in, local otherwise
	var session string
	if identity := m.app.Auth.Identity(); identity != nil {
		session = lipgloss.NewStyle().Foreground(t.Success).Padding(0, 1).
			Render("⇅ " + identity.Email)
	} else {
		session = viewStyle.Render("local")
	}

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, viewIndicator)
	rightSide := lipgloss.JoinHorizontal(lipgloss.Center, session, viewStyle.Render("theme: "+t.Name))

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + rightSide
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	if m.errorMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Error).Render(m.errorMsg)
	} else if m.statusMsg != "" {
		statusLine = lipgloss.NewStyle().Foreground(t.Info).Render(m.statusMsg)
	}

	var line1, line2 string

	switch m.currentView {
	case ViewList:
		if m.listView.IsInputMode() {
			line1 = key("enter", "confirm") + sep + key("esc", "cancel")
		} else {
			line1 = key("a", "add") + sep +
				key("enter", "edit") + sep +
				key("tab", "done") + sep +
				key("d", "del") + sep +
				key("t", "tags") + sep +
				key("@", "due")
			line2 = key("f", "filter") + sep +
				key("s", "sort") + sep +
				key("T", "tag filter") + sep +
				key("1-4", "views") + sep +
				key("?", "help")
		}

	case ViewCalendar:
		line1 = key("h/j/k/l", "days") + sep +
			key("H/L", "months") + sep +
			key("t", "today") + sep +
			key("enter", "filter day")
		line2 = key("1-4", "views") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help")

	case ViewTags:
		line1 = key("a", "add tag") + sep +
			key("d", "remove") + sep +
			key("j/k", "navigate")
		line2 = key("1-4", "views") + sep +
			key("ctrl+t", "theme") + sep +
			key("?", "help")

	case ViewLogin:
		if m.app.Auth.Identity() != nil {
			line1 = key("enter", "sign out") + sep + key("1-4", "views")
		} else {
			line1 = key("tab", "field") + sep +
				key("enter", "submit") + sep +
				key("ctrl+s", "sign in/up") + sep +
				key("esc", "back")
		}

	default:
		line1 = key("1-4", "views") + sep + key("?", "help")
	}

	var lines []string
	if statusLine != "" {
		lines = append(lines, statusLine)
	}
	if line1 != "" {
		lines = append(lines, line1)
	}
	if line2 != "" {
		lines = append(lines, line2)
	}

	return strings.Join(lines, "\n")
}

// renderHelp renders the help overlay
func (m RootModel) renderHelp() string {
	t := theme.Current.Theme

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Secondary).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(t.Foreground).
		Bold(true).
		Width(12)

	descStyle := lipgloss.NewStyle().
		Foreground(t.Subtle)

	var b strings.Builder

	b.WriteString(titleStyle.Render("Kumo Help"))
	b.WriteString("\n\n")

	section := func(name string, entries [][]string) {
		b.WriteString(sectionStyle.Render(name))
		b.WriteString("\n")
		for _, kv := range entries {
			b.WriteString(keyStyle.Render(kv[0]))
			b.WriteString(descStyle.Render(kv[1]))
			b.WriteString("\n")
		}
	}

	section("Navigation", [][]string{
		{"↑/k ↓/j", "Navigate up/down"},
		{"g / G", "Go to top/bottom"},
	})

	section("Todos", [][]string{
		{"a", "Add new todo"},
		{"enter", "Edit todo"},
		{"tab", "Toggle done"},
		{"d", "Delete (with confirm)"},
		{"t", "Pick tags for next todo"},
		{"@", "Set due date for next todo"},
	})

	section("Filters", [][]string{
		{"f", "Cycle status filter (all/active/completed)"},
		{"s", "Cycle sort (newest/oldest/a-z/z-a)"},
		{"T", "Pick tag filter"},
		{"x", "Clear date filter"},
	})

	section("Views", [][]string{
		{"1", "List"},
		{"2", "Calendar"},
		{"3", "Tags"},
		{"4", "Account"},
		{"?", "Toggle this help"},
	})

	section("System", [][]string{
		{"ctrl+t", "Cycle theme"},
		{"q / ctrl+c", "Quit"},
	})

	b.WriteString("\n")
	b.WriteString(descStyle.Render("Press ? or esc to close"))

	return b.String()
}

// cycleTheme cycles through available themes
func (m *RootModel) cycleTheme() {
	themes := theme.Available()
	current := theme.Current.Theme.Name

	for i, t := range themes {
		if t.Name == current {
			next := themes[(i+1)%len(themes)]
			theme.SetTheme(next)
			m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)
			return
		}
	}
}
