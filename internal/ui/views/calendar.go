package views

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/store"
	"github.com/aknott/kumo/internal/ui/theme"
	"github.com/aknott/kumo/internal/view"
)

// CalendarView shows per-day due counts for one month
type CalendarView struct {
	store  *store.Store
	width  int
	height int

	year  int
	month time.Month

	selectedDay int

	// Day filter currently applied to the list view ("" = none)
	activeDay string
}

// NewCalendarView creates a new calendar view
func NewCalendarView(st *store.Store) CalendarView {
	now := time.Now()
	return CalendarView{
		store:       st,
		year:        now.Year(),
		month:       now.Month(),
		selectedDay: now.Day(),
	}
}

// Init initializes the calendar view
func (v CalendarView) Init() tea.Cmd {
	return nil
}

// SetSize sets the view dimensions
func (v CalendarView) SetSize(width, height int) CalendarView {
	v.width = width
	v.height = height
	return v
}

// IsInputMode returns whether the view is in input mode
func (v CalendarView) IsInputMode() bool {
	return false
}

// SetDay records the day filter shown as active in the grid
func (v CalendarView) SetDay(day string) CalendarView {
	v.activeDay = day
	return v
}

// Update handles messages
func (v CalendarView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		daysInMonth := v.daysInMonth()

		switch msg.String() {
		// Navigate days
		case "h", "left":
			if v.selectedDay > 1 {
				v.selectedDay--
			}
		case "l", "right":
			if v.selectedDay < daysInMonth {
				v.selectedDay++
			}
		case "k", "up":
			if v.selectedDay > 7 {
				v.selectedDay -= 7
			}
		case "j", "down":
			if v.selectedDay+7 <= daysInMonth {
				v.selectedDay += 7
			}

		// Navigate months
		case "H", "pgup":
			v.month--
			if v.month < 1 {
				v.month = 12
				v.year--
			}
			v.clampSelectedDay()

		case "L", "pgdown":
			v.month++
			if v.month > 12 {
				v.month = 1
				v.year++
			}
			v.clampSelectedDay()

		case "t": // Today
			now := time.Now()
			v.year = now.Year()
			v.month = now.Month()
			v.selectedDay = now.Day()

		case "g":
			v.selectedDay = 1
		case "G":
			v.selectedDay = daysInMonth

		// Pick the selected day as the list's date filter.
		// Picking the active day again clears the filter.
		case "enter", " ":
			key := v.selectedKey()
			if key == v.activeDay {
				v.activeDay = ""
			} else {
				v.activeDay = key
			}
			day := v.activeDay
			return v, func() tea.Msg {
				return DaySelectedMsg{Day: day}
			}

		case "x", "esc":
			if v.activeDay != "" {
				v.activeDay = ""
				return v, func() tea.Msg {
					return DaySelectedMsg{Day: ""}
				}
			}
		}
	}

	return v, nil
}

// daysInMonth returns the number of days in the displayed month
func (v CalendarView) daysInMonth() int {
	return time.Date(v.year, v.month+1, 0, 0, 0, 0, 0, time.Local).Day()
}

// clampSelectedDay ensures selected day is valid for the displayed month
func (v *CalendarView) clampSelectedDay() {
	daysInMonth := v.daysInMonth()
	if v.selectedDay > daysInMonth {
		v.selectedDay = daysInMonth
	}
}

// selectedKey returns the "YYYY-MM-DD" key of the selected day
func (v CalendarView) selectedKey() string {
	return model.DateKey(time.Date(v.year, v.month, v.selectedDay, 0, 0, 0, 0, time.Local))
}

// View renders the calendar
func (v CalendarView) View() string {
	if v.width == 0 || v.height == 0 {
		return "Loading..."
	}

	t := theme.Current.Theme

	calWidth := 30
	listWidth := v.width - calWidth - 4
	if listWidth < 20 {
		listWidth = 20
	}

	counts := view.CountByDay(v.store.Todos())

	calendar := v.renderGrid(calWidth, counts)
	dayList := v.renderDayList(listWidth)

	panels := lipgloss.JoinHorizontal(lipgloss.Top, calendar, dayList)

	hints := lipgloss.NewStyle().Foreground(t.Subtle).Render(
		"h/j/k/l: days • H/L: months • t: today • enter: filter day • x: clear",
	)

	return lipgloss.JoinVertical(lipgloss.Left, panels, hints)
}

// renderGrid renders the month grid with per-day due counts
func (v CalendarView) renderGrid(width int, counts map[string]int) string {
	t := theme.Current.Theme

	monthName := fmt.Sprintf("%s %d", v.month.String(), v.year)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Width(width).
		Align(lipgloss.Center)

	dayLabelStyle := lipgloss.NewStyle().Foreground(t.Subtle)

	var lines []string
	lines = append(lines, headerStyle.Render(monthName))
	lines = append(lines, dayLabelStyle.Render(" Su  Mo  Tu  We  Th  Fr  Sa"))

	now := time.Now()
	isCurrentMonth := v.year == now.Year() && v.month == now.Month()
	today := now.Day()

	var week []string
	for _, day := range view.CalendarDays(v.year, v.month) {
		if day.IsZero() {
			// Padding before the first of the month
			week = append(week, "    ")
		} else {
			d := day.Day()
			key := model.DateKey(day)
			due := counts[key]

			cell := fmt.Sprintf("%2d", d)
			if due > 0 {
				cell += "•"
			} else {
				cell += " "
			}

			cellStyle := lipgloss.NewStyle().Width(4)
			if d == v.selectedDay {
				cellStyle = cellStyle.Background(t.Highlight).Bold(true)
			}
			if isCurrentMonth && d == today {
				cellStyle = cellStyle.Foreground(t.Primary)
			}
			if key == v.activeDay {
				cellStyle = cellStyle.Foreground(t.Success).Bold(true)
			} else if due > 0 && d != v.selectedDay {
				cellStyle = cellStyle.Foreground(t.Info)
			}

			week = append(week, cellStyle.Render(cell))
		}

		if len(week) == 7 {
			lines = append(lines, strings.Join(week, ""))
			week = nil
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, "    ")
		}
		lines = append(lines, strings.Join(week, ""))
	}

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return boxStyle.Render(strings.Join(lines, "\n"))
}

// renderDayList renders the todos due on the selected day
func (v CalendarView) renderDayList(width int) string {
	t := theme.Current.Theme

	date := time.Date(v.year, v.month, v.selectedDay, 0, 0, 0, 0, time.Local)
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Primary).
		Width(width)

	var lines []string
	lines = append(lines, headerStyle.Render(date.Format("Monday, January 2")))
	lines = append(lines, "")

	key := model.DateKey(date)
	var due []model.Todo
	for _, todo := range v.store.Todos() {
		if todo.DueDay() == key {
			due = append(due, todo)
		}
	}

	if len(due) == 0 {
		lines = append(lines, lipgloss.NewStyle().
			Foreground(t.Subtle).
			Italic(true).
			Render("Nothing due this day"))
	} else {
		now := time.Now()
		for _, todo := range due {
			checkbox := "☐"
			if todo.Completed {
				checkbox = "☑"
			}

			text := todo.Text
			maxLen := width - 6
			if maxLen > 3 && len(text) > maxLen {
				text = text[:maxLen-3] + "..."
			}

			textStyle := lipgloss.NewStyle().Foreground(t.Foreground)
			if todo.Completed {
				textStyle = textStyle.Strikethrough(true).Foreground(t.Subtle)
			} else if todo.IsOverdue(now) {
				textStyle = textStyle.Foreground(t.Error)
			}

			lines = append(lines, fmt.Sprintf("%s %s", checkbox, textStyle.Render(text)))
		}
	}

	boxStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1).
		Width(width)

	return boxStyle.Render(strings.Join(lines, "\n"))
}
