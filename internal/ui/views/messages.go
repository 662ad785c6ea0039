package views

// Messages emitted by views for the root model to route.
// (Defined here to avoid a circular import with the ui package.)

// ToastMsg carries a transient status line
type ToastMsg struct {
	Message string
}

// ToastErrMsg carries a transient error line
type ToastErrMsg struct {
	Err error
}

// DaySelectedMsg is sent when a calendar day is picked as a date filter.
// An empty day clears the filter.
type DaySelectedMsg struct {
	Day string // "YYYY-MM-DD"
}

// SignOutRequest asks the root model to end the session
type SignOutRequest struct{}

// BackRequest asks the root model to return to the list view
type BackRequest struct{}
