package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/store"
	"github.com/aknott/kumo/internal/ui/theme"
	"github.com/aknott/kumo/internal/view"
)

// ListMode represents the current input mode of the list view
type ListMode int

const (
	ListModeNormal ListMode = iota
	ListModeAdd
	ListModeEdit
	ListModeDue
	ListModeConfirmDelete
)

// ListView displays the todo collection
type ListView struct {
	store  *store.Store
	width  int
	height int

	query        view.Query
	cursor       int
	scrollOffset int

	mode      ListMode
	input     textinput.Model
	editingID string
	deleteID  string

	// Due date staged for the next added todo
	stagedDue *time.Time

	// Tag picker overlays
	selectingStaged bool // toggle staged tags for the next add
	selectingFilter bool // pick the tag filter
	pickerCursor    int
}

// NewListView creates a new list view
func NewListView(st *store.Store) ListView {
	ti := textinput.New()
	ti.Placeholder = "What needs doing?"
	ti.CharLimit = 256

	return ListView{
		store: st,
		input: ti,
		query: view.Query{
			Status: model.FilterAll,
			Sort:   model.SortNewest,
		},
	}
}

// Init initializes the list view
func (v ListView) Init() tea.Cmd {
	return nil
}

// IsInputMode returns true when the view is capturing text input
func (v ListView) IsInputMode() bool {
	if v.mode != ListModeNormal {
		return true
	}
	return v.selectingStaged || v.selectingFilter
}

// SetSize updates the view dimensions
func (v ListView) SetSize(width, height int) ListView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	return v
}

// SetDay sets or clears the date filter (driven by the calendar view)
func (v ListView) SetDay(day string) ListView {
	v.query.Day = day
	v.cursor = 0
	v.scrollOffset = 0
	return v
}

// Query returns the active filter/sort parameters
func (v ListView) Query() view.Query {
	return v.query
}

// projection computes the visible todos for the active query
func (v ListView) projection() []model.Todo {
	return view.Apply(v.store.Todos(), v.query)
}

// visibleTodoCount returns how many todos fit in the viewport
func (v ListView) visibleTodoCount() int {
	available := v.height - 5
	if available < 1 {
		available = 1
	}
	return available
}

// ensureCursorVisible adjusts scrollOffset to keep cursor in view
func (v *ListView) ensureCursorVisible(total int) {
	visible := v.visibleTodoCount()

	if v.cursor < v.scrollOffset {
		v.scrollOffset = v.cursor
	}
	if v.cursor >= v.scrollOffset+visible {
		v.scrollOffset = v.cursor - visible + 1
	}

	if v.scrollOffset < 0 {
		v.scrollOffset = 0
	}
	maxOffset := total - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if v.scrollOffset > maxOffset {
		v.scrollOffset = maxOffset
	}
}

// Update handles messages for the list view
func (v ListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case ListModeAdd:
			return v.handleAddMode(msg)
		case ListModeEdit:
			return v.handleEditMode(msg)
		case ListModeDue:
			return v.handleDueMode(msg)
		case ListModeConfirmDelete:
			return v.handleDeleteConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	if v.mode == ListModeAdd || v.mode == ListModeEdit || v.mode == ListModeDue {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return v, tea.Batch(cmds...)
}

// handleNormalMode handles keypresses in normal mode
func (v ListView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.selectingStaged || v.selectingFilter {
		return v.handleTagPicker(msg)
	}

	todos := v.projection()

	switch msg.String() {
	// Navigation
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
			v.ensureCursorVisible(len(todos))
		}
	case "down", "j":
		if v.cursor < len(todos)-1 {
			v.cursor++
			v.ensureCursorVisible(len(todos))
		}
	case "g":
		v.cursor = 0
		v.ensureCursorVisible(len(todos))
	case "G":
		v.cursor = max(0, len(todos)-1)
		v.ensureCursorVisible(len(todos))

	// Add
	case "a":
		v.mode = ListModeAdd
		v.input.Placeholder = "What needs doing?"
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink

	// Edit
	case "enter":
		if v.cursor < len(todos) {
			t := todos[v.cursor]
			v.mode = ListModeEdit
			v.editingID = t.ID
			v.input.Placeholder = ""
			v.input.SetValue(t.Text)
			v.input.CursorEnd()
			v.input.Focus()
			return v, textinput.Blink
		}

	// Toggle done
	case "tab":
		if v.cursor < len(todos) {
			commit := v.store.Toggle(todos[v.cursor].ID)
			if commit.Mirror != nil {
				return v, toastErr(fmt.Errorf("failed to save todo: %w", commit.Mirror))
			}
		}

	// Delete (with confirmation)
	case "d":
		if v.cursor < len(todos) {
			v.mode = ListModeConfirmDelete
			v.deleteID = todos[v.cursor].ID
		}

	// Staged tag picker for the next add
	case "t":
		if len(v.store.Tags()) > 0 {
			v.selectingStaged = true
			v.pickerCursor = 0
		}

	// Tag filter picker
	case "T":
		if len(v.store.Tags()) > 0 {
			v.selectingFilter = true
			v.pickerCursor = 0
		}

	// Due date for the next add
	case "@":
		v.mode = ListModeDue
		v.input.Placeholder = "YYYY-MM-DD (empty clears)"
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink

	// Cycle status filter
	case "f":
		switch v.query.Status {
		case model.FilterAll:
			v.query.Status = model.FilterActive
		case model.FilterActive:
			v.query.Status = model.FilterCompleted
		default:
			v.query.Status = model.FilterAll
		}
		v.cursor = 0
		v.scrollOffset = 0
		return v, toast(fmt.Sprintf("Filter: %s", v.query.Status))

	// Cycle sort order
	case "s":
		switch v.query.Sort {
		case model.SortNewest:
			v.query.Sort = model.SortOldest
		case model.SortOldest:
			v.query.Sort = model.SortAZ
		case model.SortAZ:
			v.query.Sort = model.SortZA
		default:
			v.query.Sort = model.SortNewest
		}
		return v, toast(fmt.Sprintf("Sort: %s", v.query.Sort))

	// Clear day filter
	case "x":
		if v.query.Day != "" {
			v.query.Day = ""
			v.cursor = 0
			return v, toast("Date filter cleared")
		}
	}

	return v, nil
}

// handleAddMode handles keypresses while entering a new todo
func (v ListView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		commit, err := v.store.Add(v.input.Value(), v.store.Staged(), v.stagedDue)
		if err != nil {
			return v, toastErr(err)
		}
		v.store.ClearStaged()
		v.stagedDue = nil
		v.input.SetValue("")
		v.cursor = 0
		v.scrollOffset = 0
		if commit.Mirror != nil {
			return v, toastErr(fmt.Errorf("failed to save todo: %w", commit.Mirror))
		}
		return v, toast("Todo added")

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleEditMode handles keypresses while editing a todo's text
func (v ListView) handleEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		commit, err := v.store.Edit(v.editingID, v.input.Value())
		if err != nil {
			return v, toastErr(err)
		}
		v.mode = ListModeNormal
		v.editingID = ""
		v.input.Blur()
		if commit.Mirror != nil {
			return v, toastErr(fmt.Errorf("failed to save todo: %w", commit.Mirror))
		}
		return v, toast("Todo updated")

	case "esc":
		v.mode = ListModeNormal
		v.editingID = ""
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleDueMode handles the due-date entry for the next added todo
func (v ListView) handleDueMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		raw := strings.TrimSpace(v.input.Value())
		v.mode = ListModeNormal
		v.input.Blur()
		if raw == "" {
			v.stagedDue = nil
			return v, toast("Due date cleared")
		}
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return v, toastErr(fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw))
		}
		v.stagedDue = &parsed
		return v, toast(fmt.Sprintf("Due: %s", parsed.Format("Mon, Jan 2")))

	case "esc":
		v.mode = ListModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleDeleteConfirm handles the delete confirmation prompt
func (v ListView) handleDeleteConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		commit := v.store.Delete(v.deleteID)
		v.mode = ListModeNormal
		v.deleteID = ""
		if v.cursor >= len(v.projection()) {
			v.cursor = max(0, len(v.projection())-1)
		}
		if commit.Mirror != nil {
			return v, toastErr(fmt.Errorf("failed to delete todo: %w", commit.Mirror))
		}
		return v, toast("Todo deleted")

	default:
		v.mode = ListModeNormal
		v.deleteID = ""
		return v, nil
	}
}

// handleTagPicker handles both the staged-tag and the filter-tag overlays
func (v ListView) handleTagPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tags := v.store.Tags()

	switch msg.String() {
	case "up", "k":
		if v.pickerCursor > 0 {
			v.pickerCursor--
		}
	case "down", "j":
		if v.pickerCursor < len(tags)-1 {
			v.pickerCursor++
		}

	case " ", "enter":
		if v.pickerCursor < len(tags) {
			name := tags[v.pickerCursor].Name
			if v.selectingStaged {
				v.store.ToggleStaged(name)
			} else {
				// Picking the active filter again clears it
				if v.query.Tag == name {
					v.query.Tag = ""
				} else {
					v.query.Tag = name
				}
				v.selectingFilter = false
				v.cursor = 0
				v.scrollOffset = 0
			}
		}

	case "x":
		if v.selectingFilter {
			v.query.Tag = ""
			v.selectingFilter = false
			v.cursor = 0
		}

	case "esc", "t", "T":
		v.selectingStaged = false
		v.selectingFilter = false
	}

	return v, nil
}

// View renders the list view
func (v ListView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	todos := v.projection()

	var sections []string
	sections = append(sections, v.renderToolbar())

	if v.mode == ListModeAdd || v.mode == ListModeEdit || v.mode == ListModeDue {
		sections = append(sections, v.renderInput())
	}

	if v.selectingStaged || v.selectingFilter {
		sections = append(sections, v.renderTagPicker())
	} else {
		sections = append(sections, v.renderTodos(todos))
	}

	sections = append(sections, v.renderStats())

	return strings.Join(sections, "\n")
}

// renderToolbar renders the filter/sort indicator line
func (v ListView) renderToolbar() string {
	t := theme.Current.Theme

	labelStyle := lipgloss.NewStyle().Foreground(t.Subtle)
	valueStyle := lipgloss.NewStyle().Foreground(t.Secondary)

	parts := []string{
		labelStyle.Render("filter:") + valueStyle.Render(string(v.query.Status)),
		labelStyle.Render("sort:") + valueStyle.Render(string(v.query.Sort)),
	}

	if v.query.Tag != "" {
		tagStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(v.store.TagColor(v.query.Tag)))
		parts = append(parts, labelStyle.Render("tag:")+tagStyle.Render(v.query.Tag))
	}
	if v.query.Day != "" {
		parts = append(parts, labelStyle.Render("day:")+valueStyle.Render(v.query.Day))
	}

	// Staging for the next add
	if staged := v.store.Staged(); len(staged) > 0 {
		var chips []string
		for _, name := range staged {
			chips = append(chips, lipgloss.NewStyle().
				Foreground(lipgloss.Color(v.store.TagColor(name))).
				Render(name))
		}
		parts = append(parts, labelStyle.Render("+tags:")+strings.Join(chips, ","))
	}
	if v.stagedDue != nil {
		parts = append(parts, labelStyle.Render("+due:")+valueStyle.Render(v.stagedDue.Format("2006-01-02")))
	}

	return " " + strings.Join(parts, "  ")
}

// renderInput renders the text input box for add/edit/due modes
func (v ListView) renderInput() string {
	styles := theme.Current.Styles

	label := "Add"
	switch v.mode {
	case ListModeEdit:
		label = "Edit"
	case ListModeDue:
		label = "Due"
	}

	return styles.PanelTitle.Render(label) + "\n" + styles.InputFocused.Render(v.input.View())
}

// renderTodos renders the visible slice of the collection
func (v ListView) renderTodos(todos []model.Todo) string {
	t := theme.Current.Theme
	styles := theme.Current.Styles
	now := time.Now()

	if len(todos) == 0 {
		empty := "No todos yet. Press a to add one."
		if len(v.store.Todos()) > 0 {
			empty = "Nothing matches the current filters."
		}
		return lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Padding(1, 2).
			Render(empty)
	}

	visible := v.visibleTodoCount()
	end := v.scrollOffset + visible
	if end > len(todos) {
		end = len(todos)
	}

	var lines []string
	for i := v.scrollOffset; i < end; i++ {
		todo := todos[i]

		checkbox := "☐"
		if todo.Completed {
			checkbox = "☑"
		}

		cursor := "  "
		if i == v.cursor {
			cursor = "> "
		}

		textStyle := styles.TodoNormal
		if todo.Completed {
			textStyle = styles.TodoDone
		} else if todo.IsOverdue(now) {
			textStyle = styles.TodoOverdue
		}
		if i == v.cursor && !todo.Completed {
			textStyle = textStyle.Bold(true)
		}

		line := cursor + checkbox + textStyle.Render(todo.Text)

		// Tag chips in their registry colors
		for _, name := range todo.Tags {
			chip := lipgloss.NewStyle().
				Foreground(lipgloss.Color(v.store.TagColor(name))).
				Render("#" + name)
			line += " " + chip
		}

		// Due date
		if todo.DueDate != nil {
			dueStyle := styles.DueDate
			if todo.IsOverdue(now) {
				dueStyle = styles.Overdue
			}
			line += " " + dueStyle.Render(todo.DueDate.Format("Jan 2"))
		}

		lines = append(lines, line)
	}

	if v.mode == ListModeConfirmDelete {
		prompt := lipgloss.NewStyle().Foreground(t.Error).
			Render("Delete this todo? (y/n)")
		lines = append(lines, "", prompt)
	}

	return strings.Join(lines, "\n")
}

// renderTagPicker renders the tag selection overlay
func (v ListView) renderTagPicker() string {
	t := theme.Current.Theme
	styles := theme.Current.Styles

	title := "Tags for next todo (space toggles, esc closes)"
	if v.selectingFilter {
		title = "Filter by tag (enter picks, x clears, esc closes)"
	}

	var lines []string
	lines = append(lines, styles.PanelTitle.Render(title))

	staged := make(map[string]bool)
	for _, name := range v.store.Staged() {
		staged[name] = true
	}

	for i, tag := range v.store.Tags() {
		cursor := "  "
		if i == v.pickerCursor {
			cursor = "> "
		}

		mark := " "
		if v.selectingStaged && staged[tag.Name] {
			mark = "✓"
		}
		if v.selectingFilter && v.query.Tag == tag.Name {
			mark = "✓"
		}

		nameStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(tag.Color))
		if i == v.pickerCursor {
			nameStyle = nameStyle.Bold(true)
		}

		lines = append(lines, fmt.Sprintf("%s[%s] %s", cursor, mark, nameStyle.Render(tag.Name)))
	}

	box := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return box.Render(strings.Join(lines, "\n"))
}

// renderStats renders the total/active/completed summary line
func (v ListView) renderStats() string {
	t := theme.Current.Theme

	stats := view.Count(v.store.Todos())
	s := fmt.Sprintf("%d total · %d active · %d done", stats.Total, stats.Active, stats.Completed)

	return lipgloss.NewStyle().Foreground(t.Subtle).Padding(0, 1).Render(s)
}

func toast(message string) tea.Cmd {
	return func() tea.Msg {
		return ToastMsg{Message: message}
	}
}

func toastErr(err error) tea.Cmd {
	return func() tea.Msg {
		return ToastErrMsg{Err: err}
	}
}
