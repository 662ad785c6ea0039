package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aknott/kumo/internal/app"
	"github.com/aknott/kumo/internal/config"
	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/store"
	"github.com/aknott/kumo/internal/ui"
	"github.com/aknott/kumo/internal/ui/theme"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "version":
			fmt.Printf("kumo v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	// Parse flags for TUI mode
	viewFlag := flag.String("view", "list", "Starting view (list, calendar, tags, account)")
	themeFlag := flag.String("theme", "", "Theme name (nord, dracula)")
	flag.Parse()

	if err := runTUI(*viewFlag, *themeFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `kumo - a todo list with optional sync

Usage:
  kumo                      Start the TUI
  kumo add <todo>           Quick add a todo (local collection)
  kumo version              Show version
  kumo help                 Show this help

Quick Add Syntax:
  kumo add "Buy groceries"
  kumo add "Review notes #Study due:tomorrow"

  Tags:      #tag          (must exist in the tag registry)
  Due date:  due:today due:tomorrow due:friday due:2026-01-15

TUI Options:
  --view <name>     Starting view (list, calendar, tags, account)
  --theme <name>    Theme (nord, dracula)

Keybindings:
  Navigation:   ↑/↓ or j/k    Move cursor
                g/G           Go to top/bottom

  Actions:      a             Add new todo
                enter         Edit todo
                tab           Toggle done
                d             Delete (with confirm)
                t             Pick tags for next todo
                @             Set due date for next todo

  Filters:      f             Cycle status filter
                s             Cycle sort order
                T             Tag filter

  Views:        1-4           Switch views
                ?             Help
                q             Quit`

	fmt.Println(help)
}

// handleAdd appends a todo to the local collection without starting the
// TUI. Quick add never touches the sync database.
func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: kumo add <todo>")
		fmt.Fprintln(os.Stderr, "Example: kumo add \"Buy groceries #Shopping due:tomorrow\"")
		os.Exit(1)
	}

	parsed := parseQuickAdd(strings.Join(args, " "), time.Now())

	cfg := config.Load(config.DefaultPath())
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating data directory: %v\n", err)
		os.Exit(1)
	}

	// No lock needed for quick add - just one kv write
	database, err := db.Open(cfg.LocalDB())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	st := store.New(database, nil)

	var todos []model.Todo
	database.LoadJSON(db.KeyTodos, &todos)
	st.ReplaceAll(todos)

	// Only registered tags attach; report the rest
	var tags, unknown []string
	for _, name := range parsed.Tags {
		if st.HasTagOption(name) {
			tags = append(tags, name)
		} else {
			unknown = append(unknown, name)
		}
	}

	commit, err := st.Add(parsed.Text, tags, parsed.Due)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Added: %s\n", commit.Todo.Text)
	if commit.Todo.DueDate != nil {
		fmt.Printf("Due: %s\n", formatDueDate(*commit.Todo.DueDate))
	}
	if len(tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(tags, ", "))
	}
	for _, name := range unknown {
		fmt.Fprintf(os.Stderr, "Skipped unknown tag %q (add it in the TUI first)\n", name)
	}
}

// quickAdd is the parsed form of a quick-add argument string
type quickAdd struct {
	Text string
	Tags []string
	Due  *time.Time
}

// parseQuickAdd splits #tag and due: words out of the todo text
func parseQuickAdd(text string, now time.Time) quickAdd {
	var out quickAdd
	var textParts []string

	for _, word := range strings.Fields(text) {
		switch {
		// Tags (#Work, #Shopping, ...)
		case strings.HasPrefix(word, "#") && len(word) > 1:
			out.Tags = append(out.Tags, strings.TrimPrefix(word, "#"))

		// Due date (due:tomorrow, due:friday, due:2026-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			dateStr := strings.TrimPrefix(strings.ToLower(word), "due:")
			if parsed := parseNaturalDate(dateStr, now); parsed != nil {
				out.Due = parsed
			} else {
				textParts = append(textParts, word)
			}

		default:
			textParts = append(textParts, word)
		}
	}

	out.Text = strings.Join(textParts, " ")
	return out
}

// parseNaturalDate resolves a natural or ISO date relative to now
func parseNaturalDate(s string, now time.Time) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "monday", "mon":
		return nextWeekday(now, time.Monday)
	case "tuesday", "tue":
		return nextWeekday(now, time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(now, time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(now, time.Thursday)
	case "friday", "fri":
		return nextWeekday(now, time.Friday)
	case "saturday", "sat":
		return nextWeekday(now, time.Saturday)
	case "sunday", "sun":
		return nextWeekday(now, time.Sunday)
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return &t
	}

	return nil
}

// nextWeekday returns the next occurrence of day strictly after today
func nextWeekday(now time.Time, day time.Weekday) *time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	t := today.AddDate(0, 0, daysUntil)
	return &t
}

func formatDueDate(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if t.Year() == tomorrow.Year() && t.YearDay() == tomorrow.YearDay() {
		return "tomorrow"
	}

	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}

	return t.Format("Jan 2, 2006")
}

func runTUI(startView, themeName string) error {
	application, err := app.New(nil)
	if err != nil {
		return err
	}
	defer application.Close()

	// Config theme first, flag overrides
	if t, ok := theme.ByName(application.Config.Theme); ok {
		theme.SetTheme(t)
	}
	if themeName != "" {
		if t, ok := theme.ByName(themeName); ok {
			theme.SetTheme(t)
		} else {
			return fmt.Errorf("unknown theme %q", themeName)
		}
	}

	model := ui.NewRootModel(application).WithStartView(startView)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
