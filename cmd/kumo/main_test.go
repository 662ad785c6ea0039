package main

import (
	"testing"
	"time"
)

func TestParseQuickAdd(t *testing.T) {
	// A Tuesday
	now := time.Date(2026, 1, 6, 10, 0, 0, 0, time.Local)

	tests := []struct {
		name     string
		input    string
		wantText string
		wantTags []string
		wantDue  string // "YYYY-MM-DD", "" = nil
	}{
		{
			name:     "plain text",
			input:    "Buy milk",
			wantText: "Buy milk",
		},
		{
			name:     "single tag",
			input:    "Review notes #Study",
			wantText: "Review notes",
			wantTags: []string{"Study"},
		},
		{
			name:     "multiple tags",
			input:    "#Work prep meeting #Personal",
			wantText: "prep meeting",
			wantTags: []string{"Work", "Personal"},
		},
		{
			name:     "due today",
			input:    "Pay rent due:today",
			wantText: "Pay rent",
			wantDue:  "2026-01-06",
		},
		{
			name:     "due tomorrow",
			input:    "Call dentist due:tomorrow",
			wantText: "Call dentist",
			wantDue:  "2026-01-07",
		},
		{
			name:     "due next weekday",
			input:    "Ship package due:friday",
			wantText: "Ship package",
			wantDue:  "2026-01-09",
		},
		{
			name:     "weekday today rolls a week",
			input:    "Standup due:tuesday",
			wantText: "Standup",
			wantDue:  "2026-01-13",
		},
		{
			name:     "iso date",
			input:    "Taxes due:2026-04-15",
			wantText: "Taxes",
			wantDue:  "2026-04-15",
		},
		{
			name:     "invalid due stays in text",
			input:    "Read due:whenever",
			wantText: "Read due:whenever",
		},
		{
			name:     "bare hash stays in text",
			input:    "Tune the # channel",
			wantText: "Tune the # channel",
		},
		{
			name:     "everything combined",
			input:    "Buy groceries #Shopping due:tomorrow",
			wantText: "Buy groceries",
			wantTags: []string{"Shopping"},
			wantDue:  "2026-01-07",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseQuickAdd(tt.input, now)

			if got.Text != tt.wantText {
				t.Errorf("text = %q, want %q", got.Text, tt.wantText)
			}

			if len(got.Tags) != len(tt.wantTags) {
				t.Fatalf("tags = %v, want %v", got.Tags, tt.wantTags)
			}
			for i := range tt.wantTags {
				if got.Tags[i] != tt.wantTags[i] {
					t.Errorf("tags[%d] = %q, want %q", i, got.Tags[i], tt.wantTags[i])
				}
			}

			if tt.wantDue == "" {
				if got.Due != nil {
					t.Errorf("due = %v, want nil", got.Due)
				}
			} else {
				if got.Due == nil {
					t.Fatalf("due = nil, want %s", tt.wantDue)
				}
				if got.Due.Format("2006-01-02") != tt.wantDue {
					t.Errorf("due = %s, want %s", got.Due.Format("2006-01-02"), tt.wantDue)
				}
			}
		})
	}
}

func TestParseNaturalDateNormalizesToMidnight(t *testing.T) {
	now := time.Date(2026, 1, 6, 17, 45, 3, 0, time.Local)

	got := parseNaturalDate("today", now)
	if got == nil {
		t.Fatal("parseNaturalDate returned nil")
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("time of day not normalized: %v", got)
	}
}
