package ui

import (
	"github.com/aknott/kumo/internal/auth"
	"github.com/aknott/kumo/internal/bridge"
)

// View represents the current active view
type View int

const (
	ViewList View = iota
	ViewCalendar
	ViewTags
	ViewLogin
	ViewHelp
)

// String returns the display name for a view
func (v View) String() string {
	switch v {
	case ViewList:
		return "List"
	case ViewCalendar:
		return "Calendar"
	case ViewTags:
		return "Tags"
	case ViewLogin:
		return "Account"
	case ViewHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// Messages for inter-component communication

// SnapshotMsg carries a remote collection snapshot from the bridge
type SnapshotMsg struct {
	Snapshot bridge.Snapshot
}

// SignedInMsg indicates a session was established
type SignedInMsg struct {
	Identity auth.Identity
}

// SignedOutMsg indicates the session ended
type SignedOutMsg struct{}

// ErrorMsg contains an error to display
type ErrorMsg struct {
	Err error
}

// StatusMsg contains a status message to display
type StatusMsg struct {
	Message string
}

// ThemeChangedMsg indicates the theme was changed
type ThemeChangedMsg struct {
	ThemeName string
}
