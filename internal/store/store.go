// Package store owns the in-memory todo collection and tag registry.
// All mutations happen on the single UI goroutine; persistence is a
// side effect configured by the bridge (a whole-collection write to the
// local key-value store, or a per-document mirror to the remote store).
package store

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"time"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
)

var (
	ErrEmptyText    = errors.New("store: todo text is empty")
	ErrEmptyTag     = errors.New("store: tag name is empty")
	ErrDuplicateTag = errors.New("store: tag already exists")
)

// KV is the slice of the local database the store persists through
type KV interface {
	LoadJSON(key string, v any) bool
	StoreJSON(key string, v any)
}

// RemoteWriter mirrors individual documents to the remote store
type RemoteWriter interface {
	Upsert(ctx context.Context, uid string, todo model.Todo) error
	Delete(ctx context.Context, uid, id string) error
}

// Commit reports the outcome of a mutation. The local phase always
// succeeds once validation passes; Mirror carries the error from the
// best-effort remote write, which is never rolled back or retried.
type Commit struct {
	Todo   *model.Todo
	Mirror error
}

// Store holds the todo collection, the tag registry, and the tag
// selection staged for the next add
type Store struct {
	todos []model.Todo

	tagNames  []string
	tagColors map[string]string
	staged    []string

	kv     KV
	remote RemoteWriter
	uid    string

	rnd *rand.Rand
	now func() time.Time
}

// New creates a store backed by the local key-value store. The tag
// registry is loaded immediately; the todo collection is populated by
// the persistence bridge. A nil rnd falls back to a time-seeded source.
func New(kv KV, rnd *rand.Rand) *Store {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Store{
		kv:  kv,
		rnd: rnd,
		now: time.Now,
	}
	s.loadTags()
	return s
}

// UseLocal switches the store to local persistence: after every mutation
// the whole collection is re-serialized to the key-value store
func (s *Store) UseLocal() {
	s.remote = nil
	s.uid = ""
}

// UseRemote switches the store to remote persistence: every mutation is
// mirrored per-document, scoped to the given user, and the local todos
// key is left untouched
func (s *Store) UseRemote(w RemoteWriter, uid string) {
	s.remote = w
	s.uid = uid
}

// Remote reports whether mutations are currently mirrored remotely
func (s *Store) Remote() bool {
	return s.remote != nil
}

// Todos returns a copy of the current collection
func (s *Store) Todos() []model.Todo {
	out := make([]model.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// ReplaceAll swaps in a whole new collection, used when a remote
// snapshot arrives or when the persistence mode switches. It never
// writes anywhere.
func (s *Store) ReplaceAll(todos []model.Todo) {
	s.todos = make([]model.Todo, len(todos))
	copy(s.todos, todos)
}

// Add validates and appends a new todo. The new item starts active with
// a fresh unique id and the current time as its creation stamp.
func (s *Store) Add(text string, tags []string, due *time.Time) (Commit, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Commit{}, ErrEmptyText
	}

	now := s.now()
	todo := model.Todo{
		ID:        model.NewID(now, s.rnd),
		Text:      trimmed,
		Tags:      append([]string(nil), tags...),
		DueDate:   due,
		CreatedAt: now,
	}
	s.todos = append(s.todos, todo)

	return s.flush(&todo), nil
}

// Toggle flips the completion state of the item with the given id.
// An unknown id is a silent no-op.
func (s *Store) Toggle(id string) Commit {
	i := s.index(id)
	if i < 0 {
		return Commit{}
	}

	s.todos[i].Completed = !s.todos[i].Completed
	s.touch(i)
	return s.flush(&s.todos[i])
}

// Edit replaces the text of the item with the given id. Text that trims
// to empty leaves the item unchanged.
func (s *Store) Edit(id, text string) (Commit, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Commit{}, ErrEmptyText
	}
	i := s.index(id)
	if i < 0 {
		return Commit{}, nil
	}

	s.todos[i].Text = trimmed
	s.touch(i)
	return s.flush(&s.todos[i]), nil
}

// Delete removes the item with the given id from the collection first,
// then issues the remote delete. A failed remote delete never restores
// the item; deleting an absent id is a no-op.
func (s *Store) Delete(id string) Commit {
	i := s.index(id)
	if i < 0 {
		return Commit{}
	}

	s.todos = append(s.todos[:i], s.todos[i+1:]...)

	var commit Commit
	if s.remote != nil {
		commit.Mirror = s.remote.Delete(context.Background(), s.uid, id)
	} else {
		s.saveLocal()
	}
	return commit
}

// RemoveTagFromAll strips the named tag from every todo's tag set. This
// is local-only cleanup driven by tag-registry removal: affected items
// are not re-mirrored remotely.
func (s *Store) RemoveTagFromAll(name string) {
	changed := false
	for i := range s.todos {
		if filtered, ok := without(s.todos[i].Tags, name); ok {
			s.todos[i].Tags = filtered
			changed = true
		}
	}
	if changed && s.remote == nil {
		s.saveLocal()
	}
}

// flush persists a single mutated item: a remote upsert in remote mode,
// a whole-collection local write otherwise
func (s *Store) flush(todo *model.Todo) Commit {
	commit := Commit{Todo: todo}
	if s.remote != nil {
		commit.Mirror = s.remote.Upsert(context.Background(), s.uid, *todo)
	} else {
		s.saveLocal()
	}
	return commit
}

// saveLocal re-serializes the whole collection. Write failures are
// swallowed: the in-memory state stays authoritative.
func (s *Store) saveLocal() {
	s.kv.StoreJSON(db.KeyTodos, s.todos)
}

func (s *Store) index(id string) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) touch(i int) {
	now := s.now()
	s.todos[i].UpdatedAt = &now
}

func without(tags []string, name string) ([]string, bool) {
	found := false
	out := tags[:0:0]
	for _, t := range tags {
		if t == name {
			found = true
			continue
		}
		out = append(out, t)
	}
	return out, found
}
