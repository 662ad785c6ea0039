package store

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/aknott/kumo/internal/db"
)

func TestDefaultTagsSeeded(t *testing.T) {
	s, _ := newTestStore()

	tags := s.Tags()
	if len(tags) != 4 {
		t.Fatalf("expected 4 seed tags, got %d", len(tags))
	}
	if tags[0].Name != "Work" || tags[0].Color == "" {
		t.Errorf("seed tag = %+v", tags[0])
	}
}

func TestTagsSurviveReload(t *testing.T) {
	kv := newFakeKV()
	s := New(kv, rand.New(rand.NewSource(1)))
	s.AddTag("Errands")

	reloaded := New(kv, rand.New(rand.NewSource(2)))
	if !reloaded.HasTagOption("Errands") {
		t.Error("tag did not survive reload")
	}
	if reloaded.TagColor("Errands") != s.TagColor("Errands") {
		t.Error("tag color changed across reload")
	}
}

func TestAddTagValidation(t *testing.T) {
	s, _ := newTestStore()

	if _, err := s.AddTag("   "); !errors.Is(err, ErrEmptyTag) {
		t.Errorf("blank tag error = %v", err)
	}
	if _, err := s.AddTag("Work"); !errors.Is(err, ErrDuplicateTag) {
		t.Errorf("duplicate tag error = %v", err)
	}

	// Matching is case-sensitive: a different casing is a new tag
	if _, err := s.AddTag("work"); err != nil {
		t.Errorf("case-variant tag rejected: %v", err)
	}
}

func TestAddTagAssignsPaletteColor(t *testing.T) {
	s, _ := newTestStore()

	tag, err := s.AddTag("Garden")
	if err != nil {
		t.Fatalf("AddTag failed: %v", err)
	}
	if tag.Color == "" {
		t.Error("new tag has no color")
	}
	if s.TagColor("Garden") != tag.Color {
		t.Error("registry color disagrees with returned tag")
	}
}

func TestRemoveTagCascades(t *testing.T) {
	s, kv := newTestStore()
	s.Add("tagged todo", []string{"Work", "Personal"}, nil)
	s.ToggleStaged("Work")

	s.RemoveTag("Work")

	if s.HasTagOption("Work") {
		t.Error("tag still in registry")
	}
	if s.TagColor("Work") != "" {
		t.Error("color mapping survived removal")
	}
	for _, staged := range s.Staged() {
		if staged == "Work" {
			t.Error("staged selection survived removal")
		}
	}
	for _, todo := range s.Todos() {
		if todo.HasTag("Work") {
			t.Errorf("todo %s still carries the removed tag", todo.ID)
		}
	}
	// The untouched tag remains
	if !s.Todos()[0].HasTag("Personal") {
		t.Error("cascade removed an unrelated tag")
	}

	// Cascade is reflected in local storage
	var storedNames []string
	kv.LoadJSON(db.KeyTagNames, &storedNames)
	for _, n := range storedNames {
		if n == "Work" {
			t.Error("removed tag still persisted")
		}
	}
}

func TestReAddDrawsFreshColor(t *testing.T) {
	s, _ := newTestStore()

	original := s.TagColor("Work")
	s.RemoveTag("Work")
	tag, err := s.AddTag("Work")
	if err != nil {
		t.Fatalf("re-add failed: %v", err)
	}
	// No memory of prior colors: the draw is independent. The new color
	// must come from the palette; equality with the old one is chance.
	if tag.Color == "" {
		t.Error("re-added tag has no color")
	}
	_ = original
}

func TestStagedSelection(t *testing.T) {
	s, _ := newTestStore()

	s.ToggleStaged("Work")
	s.ToggleStaged("Study")
	if got := s.Staged(); len(got) != 2 {
		t.Fatalf("staged = %v", got)
	}

	s.ToggleStaged("Work")
	got := s.Staged()
	if len(got) != 1 || got[0] != "Study" {
		t.Errorf("staged after untoggle = %v", got)
	}

	s.ClearStaged()
	if len(s.Staged()) != 0 {
		t.Error("ClearStaged left selections behind")
	}
}
