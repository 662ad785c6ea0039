package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aknott/kumo/internal/store"
	"github.com/aknott/kumo/internal/ui/theme"
)

// TagsMode represents the current input mode of the tags view
type TagsMode int

const (
	TagsModeNormal TagsMode = iota
	TagsModeAdd
	TagsModeConfirmRemove
)

// TagsView manages the tag registry
type TagsView struct {
	store  *store.Store
	width  int
	height int

	cursor int
	mode   TagsMode
	input  textinput.Model

	removeName string
}

// NewTagsView creates a new tags view
func NewTagsView(st *store.Store) TagsView {
	ti := textinput.New()
	ti.Placeholder = "New tag name..."
	ti.CharLimit = 64

	return TagsView{
		store: st,
		input: ti,
	}
}

// Init initializes the tags view
func (v TagsView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v TagsView) SetSize(width, height int) TagsView {
	v.width = width
	v.height = height
	v.input.Width = width - 4
	return v
}

// IsInputMode returns whether the view is capturing text input
func (v TagsView) IsInputMode() bool {
	return v.mode != TagsModeNormal
}

// Update handles messages
func (v TagsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch v.mode {
		case TagsModeAdd:
			return v.handleAddMode(msg)
		case TagsModeConfirmRemove:
			return v.handleRemoveConfirm(msg)
		default:
			return v.handleNormalMode(msg)
		}
	}

	return v, nil
}

// handleNormalMode handles keypresses in normal mode
func (v TagsView) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tags := v.store.Tags()

	switch msg.String() {
	case "up", "k":
		if v.cursor > 0 {
			v.cursor--
		}
	case "down", "j":
		if v.cursor < len(tags)-1 {
			v.cursor++
		}
	case "g":
		v.cursor = 0
	case "G":
		v.cursor = max(0, len(tags)-1)

	case "a":
		v.mode = TagsModeAdd
		v.input.SetValue("")
		v.input.Focus()
		return v, textinput.Blink

	case "d":
		if v.cursor < len(tags) {
			v.mode = TagsModeConfirmRemove
			v.removeName = tags[v.cursor].Name
		}
	}

	return v, nil
}

// handleAddMode handles keypresses while entering a new tag
func (v TagsView) handleAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		tag, err := v.store.AddTag(v.input.Value())
		if err != nil {
			return v, toastErr(err)
		}
		v.mode = TagsModeNormal
		v.input.Blur()
		return v, toast(fmt.Sprintf("Tag %q added", tag.Name))

	case "esc":
		v.mode = TagsModeNormal
		v.input.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleRemoveConfirm handles the cascade-removal confirmation
func (v TagsView) handleRemoveConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		name := v.removeName
		v.store.RemoveTag(name)
		v.mode = TagsModeNormal
		v.removeName = ""
		if v.cursor >= len(v.store.Tags()) {
			v.cursor = max(0, len(v.store.Tags())-1)
		}
		return v, toast(fmt.Sprintf("Tag %q removed", name))

	default:
		v.mode = TagsModeNormal
		v.removeName = ""
		return v, nil
	}
}

// View renders the tag registry
func (v TagsView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme
	styles := theme.Current.Styles

	var lines []string
	lines = append(lines, styles.PanelTitle.Render("Tags"))
	lines = append(lines, "")

	tags := v.store.Tags()
	if len(tags) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Render("No tags. Press a to add one."))
	}

	// Count usage so removal consequences are visible
	usage := make(map[string]int)
	for _, todo := range v.store.Todos() {
		for _, name := range todo.Tags {
			usage[name]++
		}
	}

	for i, tag := range tags {
		cursor := "  "
		if i == v.cursor {
			cursor = "> "
		}

		swatch := lipgloss.NewStyle().
			Foreground(lipgloss.Color(tag.Color)).
			Render("●")

		nameStyle := lipgloss.NewStyle().Foreground(t.Foreground)
		if i == v.cursor {
			nameStyle = nameStyle.Bold(true)
		}

		line := fmt.Sprintf("%s%s %s", cursor, swatch, nameStyle.Render(tag.Name))
		if n := usage[tag.Name]; n > 0 {
			line += lipgloss.NewStyle().Foreground(t.Subtle).
				Render(fmt.Sprintf("  (%d todos)", n))
		}
		lines = append(lines, line)
	}

	if v.mode == TagsModeAdd {
		lines = append(lines, "", styles.InputFocused.Render(v.input.View()))
	}

	if v.mode == TagsModeConfirmRemove {
		warn := lipgloss.NewStyle().Foreground(t.Error).Render(
			fmt.Sprintf("Remove %q from the registry and every todo? (y/n)", v.removeName))
		lines = append(lines, "", warn)
	}

	lines = append(lines, "", lipgloss.NewStyle().Foreground(t.Subtle).
		Render("a: add • d: remove • j/k: navigate"))

	return strings.Join(lines, "\n")
}
