package model

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// StatusFilter narrows the list by completion state
type StatusFilter string

const (
	FilterAll       StatusFilter = "all"
	FilterActive    StatusFilter = "active"
	FilterCompleted StatusFilter = "completed"
)

// SortOrder selects one of the four total orders for the list view
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortAZ     SortOrder = "az"
	SortZA     SortOrder = "za"
)

// Todo represents a single task record
type Todo struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Completed bool       `json:"completed"`
	Tags      []string   `json:"tags,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// NewID generates a collection-unique todo id: the creation time in unix
// milliseconds plus a random base-36 suffix to avoid collisions when two
// items are created in the same millisecond.
func NewID(now time.Time, rnd *rand.Rand) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	const digits = "0123456789abcdefghijklmnopqrstuvwxyz"
	for i := 0; i < 11; i++ {
		b.WriteByte(digits[rnd.Intn(len(digits))])
	}
	return b.String()
}

// IsOverdue returns true if the todo has a due date strictly in the past
// and is not completed
func (t *Todo) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return t.DueDate.Before(now)
}

// HasTag reports whether the todo carries the named tag (exact match)
func (t *Todo) HasTag(name string) bool {
	for _, tag := range t.Tags {
		if tag == name {
			return true
		}
	}
	return false
}

// DueDay returns the calendar-day key of the due date, or "" without one
func (t *Todo) DueDay() string {
	if t.DueDate == nil {
		return ""
	}
	return DateKey(*t.DueDate)
}

// DateKey converts a point in time to the local calendar day it falls on,
// independent of time-of-day
func DateKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
