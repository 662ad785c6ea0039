package store

import (
	"strings"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
)

// loadTags populates the registry from the key-value store, seeding the
// defaults on first run or when the stored blobs are unreadable
func (s *Store) loadTags() {
	if !s.kv.LoadJSON(db.KeyTagNames, &s.tagNames) {
		s.tagNames, s.tagColors = model.DefaultTags()
		s.persistTags()
		return
	}
	if !s.kv.LoadJSON(db.KeyTagColors, &s.tagColors) {
		s.tagColors = make(map[string]string)
	}
}

// Tags returns the registry in insertion order with colors attached
func (s *Store) Tags() []model.Tag {
	out := make([]model.Tag, 0, len(s.tagNames))
	for _, name := range s.tagNames {
		out = append(out, model.Tag{Name: name, Color: s.tagColors[name]})
	}
	return out
}

// TagColor returns the display color for a tag, or "" if unknown
func (s *Store) TagColor(name string) string {
	return s.tagColors[name]
}

// HasTagOption reports whether a name exists in the registry
// (case-sensitive exact match)
func (s *Store) HasTagOption(name string) bool {
	for _, n := range s.tagNames {
		if n == name {
			return true
		}
	}
	return false
}

// AddTag registers a new tag name, drawing its display color at random
// from the palette. The color is stable for the tag's lifetime.
func (s *Store) AddTag(name string) (model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Tag{}, ErrEmptyTag
	}
	if s.HasTagOption(name) {
		return model.Tag{}, ErrDuplicateTag
	}

	if s.tagColors == nil {
		s.tagColors = make(map[string]string)
	}
	color := model.PickColor(s.rnd)
	s.tagColors[name] = color
	s.tagNames = append(s.tagNames, name)
	s.persistTags()

	return model.Tag{Name: name, Color: color}, nil
}

// RemoveTag drops a tag from the registry, the staged selection, every
// todo's tag set, and the color mapping. Removal is terminal: re-adding
// the same name later draws a fresh color.
func (s *Store) RemoveTag(name string) {
	if filtered, ok := without(s.tagNames, name); ok {
		s.tagNames = filtered
	}
	if filtered, ok := without(s.staged, name); ok {
		s.staged = filtered
	}
	s.RemoveTagFromAll(name)
	delete(s.tagColors, name)
	s.persistTags()
}

// Staged returns the tags currently selected for the next add
func (s *Store) Staged() []string {
	return append([]string(nil), s.staged...)
}

// ToggleStaged adds or removes a tag from the next-add selection
func (s *Store) ToggleStaged(name string) {
	if filtered, ok := without(s.staged, name); ok {
		s.staged = filtered
		return
	}
	s.staged = append(s.staged, name)
}

// ClearStaged empties the next-add selection, called after a
// successful add
func (s *Store) ClearStaged() {
	s.staged = nil
}

// persistTags writes the tag list and color mapping. Tags are local UI
// configuration and persist regardless of persistence mode.
func (s *Store) persistTags() {
	s.kv.StoreJSON(db.KeyTagNames, s.tagNames)
	s.kv.StoreJSON(db.KeyTagColors, s.tagColors)
}
