// Package view computes display projections of the todo collection.
// Everything here is a pure function of its inputs; nothing mutates the
// underlying collection.
package view

import (
	"sort"
	"time"

	"github.com/aknott/kumo/internal/model"
)

// Query carries the current filter and sort parameters
type Query struct {
	Status model.StatusFilter
	Tag    string // "" disables the tag filter
	Day    string // "YYYY-MM-DD", "" disables the date filter
	Sort   model.SortOrder
}

// Apply filters and sorts the collection for display. The three filter
// predicates are conjunctive; the sort is stable so ties keep their
// incoming order.
func Apply(todos []model.Todo, q Query) []model.Todo {
	out := make([]model.Todo, 0, len(todos))
	for _, t := range todos {
		if matches(t, q) {
			out = append(out, t)
		}
	}

	switch q.Sort {
	case model.SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case model.SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case model.SortAZ:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Text < out[j].Text
		})
	case model.SortZA:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Text > out[j].Text
		})
	}

	return out
}

func matches(t model.Todo, q Query) bool {
	switch q.Status {
	case model.FilterActive:
		if t.Completed {
			return false
		}
	case model.FilterCompleted:
		if !t.Completed {
			return false
		}
	}
	if q.Tag != "" && !t.HasTag(q.Tag) {
		return false
	}
	if q.Day != "" && t.DueDay() != q.Day {
		return false
	}
	return true
}

// CountByDay maps each calendar-day key to the number of todos due that
// day. Todos without a due date are excluded.
func CountByDay(todos []model.Todo) map[string]int {
	counts := make(map[string]int)
	for _, t := range todos {
		if key := t.DueDay(); key != "" {
			counts[key]++
		}
	}
	return counts
}

// Stats summarizes the collection by completion state
type Stats struct {
	Total     int
	Active    int
	Completed int
}

// Count tallies the collection
func Count(todos []model.Todo) Stats {
	s := Stats{Total: len(todos)}
	for _, t := range todos {
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
	}
	return s
}

// CalendarDays returns the day cells for a month grid: leading zero
// times pad the first week so day 1 lands on its weekday column
// (Sunday first), followed by one entry per day of the month.
func CalendarDays(year int, month time.Month) []time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	days := make([]time.Time, 0, int(first.Weekday())+daysInMonth)
	for i := 0; i < int(first.Weekday()); i++ {
		days = append(days, time.Time{})
	}
	for d := 1; d <= daysInMonth; d++ {
		days = append(days, time.Date(year, month, d, 0, 0, 0, 0, time.Local))
	}
	return days
}
