package model

import (
	"math/rand"
)

// Tag represents a named label with an associated display color
type Tag struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// Palette is the fixed set of colors new tags draw from
var Palette = []string{
	"#5E81AC", // blue
	"#B48EAD", // purple
	"#BF616A", // red
	"#8FBCBB", // teal
	"#D08770", // orange
	"#4C566A", // slate
}

// PickColor draws a palette color by uniform-random selection from the
// supplied source. Color assignment for a tag is stable for its lifetime;
// re-adding a removed tag draws fresh.
func PickColor(rnd *rand.Rand) string {
	return Palette[rnd.Intn(len(Palette))]
}

// DefaultTags is the seed registry used when nothing is stored yet
func DefaultTags() ([]string, map[string]string) {
	names := []string{"Work", "Personal", "Study", "Shopping"}
	colors := map[string]string{
		"Work":     "#BF616A",
		"Personal": "#B48EAD",
		"Study":    "#A3BE8C",
		"Shopping": "#EBCB8B",
	}
	return names, colors
}
