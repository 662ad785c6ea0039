package store

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/aknott/kumo/internal/db"
	"github.com/aknott/kumo/internal/model"
)

// fakeKV is an in-memory stand-in for the local key-value store
type fakeKV struct {
	values map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

func (kv *fakeKV) LoadJSON(key string, v any) bool {
	raw, ok := kv.values[key]
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

func (kv *fakeKV) StoreJSON(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	kv.values[key] = string(raw)
}

// fakeRemote records mirrored writes and can be told to fail
type fakeRemote struct {
	upserts []model.Todo
	deletes []string
	fail    error
}

func (r *fakeRemote) Upsert(_ context.Context, uid string, todo model.Todo) error {
	if r.fail != nil {
		return r.fail
	}
	r.upserts = append(r.upserts, todo)
	return nil
}

func (r *fakeRemote) Delete(_ context.Context, uid, id string) error {
	if r.fail != nil {
		return r.fail
	}
	r.deletes = append(r.deletes, id)
	return nil
}

func newTestStore() (*Store, *fakeKV) {
	kv := newFakeKV()
	return New(kv, rand.New(rand.NewSource(1))), kv
}

func TestAddAppendsActiveTodo(t *testing.T) {
	s, _ := newTestStore()

	commit, err := s.Add("Buy milk", []string{"Shopping"}, nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if commit.Todo == nil {
		t.Fatal("Add returned no todo")
	}
	if commit.Todo.Completed {
		t.Error("new todo should start active")
	}
	if commit.Todo.ID == "" || commit.Todo.CreatedAt.IsZero() {
		t.Error("new todo missing id or creation time")
	}

	todos := s.Todos()
	if len(todos) != 1 {
		t.Fatalf("collection size = %d, want 1", len(todos))
	}
	if todos[0].Text != "Buy milk" {
		t.Errorf("text = %q", todos[0].Text)
	}
}

func TestAddTrimsText(t *testing.T) {
	s, _ := newTestStore()

	commit, err := s.Add("  padded  ", nil, nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if commit.Todo.Text != "padded" {
		t.Errorf("text = %q, want trimmed", commit.Todo.Text)
	}
}

func TestAddRejectsEmptyText(t *testing.T) {
	s, _ := newTestStore()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(text, nil, nil)
		if !errors.Is(err, ErrEmptyText) {
			t.Errorf("Add(%q) error = %v, want ErrEmptyText", text, err)
		}
	}
	if len(s.Todos()) != 0 {
		t.Error("rejected adds mutated the collection")
	}
}

func TestAddUniqueIDs(t *testing.T) {
	s, _ := newTestStore()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		commit, _ := s.Add("item", nil, nil)
		if seen[commit.Todo.ID] {
			t.Fatalf("duplicate id %s", commit.Todo.ID)
		}
		seen[commit.Todo.ID] = true
	}
}

func TestToggleInvolution(t *testing.T) {
	s, _ := newTestStore()
	commit, _ := s.Add("flip me", nil, nil)
	id := commit.Todo.ID

	first := s.Toggle(id)
	if first.Todo == nil || !first.Todo.Completed {
		t.Fatal("first toggle did not complete the todo")
	}
	second := s.Toggle(id)
	if second.Todo == nil || second.Todo.Completed {
		t.Fatal("second toggle did not restore the original state")
	}
}

func TestToggleUnknownIDNoop(t *testing.T) {
	s, _ := newTestStore()
	s.Add("only", nil, nil)

	commit := s.Toggle("missing")
	if commit.Todo != nil || commit.Mirror != nil {
		t.Error("toggle of unknown id should be a silent no-op")
	}
	if len(s.Todos()) != 1 {
		t.Error("toggle of unknown id mutated collection")
	}
}

func TestEdit(t *testing.T) {
	s, _ := newTestStore()
	commit, _ := s.Add("draft", nil, nil)
	id := commit.Todo.ID

	edited, err := s.Edit(id, "final")
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}
	if edited.Todo.Text != "final" {
		t.Errorf("text = %q", edited.Todo.Text)
	}
	if edited.Todo.UpdatedAt == nil {
		t.Error("edit did not stamp updated-at")
	}
}

func TestEditEmptyTextNoop(t *testing.T) {
	s, _ := newTestStore()
	commit, _ := s.Add("keep", nil, nil)

	_, err := s.Edit(commit.Todo.ID, "   ")
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("Edit with blank text error = %v", err)
	}
	if s.Todos()[0].Text != "keep" {
		t.Error("blank edit mutated the text")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	s, _ := newTestStore()
	commit, _ := s.Add("doomed", nil, nil)
	id := commit.Todo.ID

	s.Delete(id)
	if len(s.Todos()) != 0 {
		t.Fatal("delete did not remove the item")
	}

	// Second delete is a no-op with no error surface
	again := s.Delete(id)
	if again.Mirror != nil {
		t.Errorf("second delete surfaced error: %v", again.Mirror)
	}
}

func TestLocalModePersistsWholeCollection(t *testing.T) {
	s, kv := newTestStore()
	s.Add("persist me", nil, nil)

	var stored []model.Todo
	if !kv.LoadJSON(db.KeyTodos, &stored) {
		t.Fatal("no todos written to the kv store")
	}
	if len(stored) != 1 || stored[0].Text != "persist me" {
		t.Errorf("stored %v", stored)
	}

	s.Delete(s.Todos()[0].ID)
	stored = nil
	kv.LoadJSON(db.KeyTodos, &stored)
	if len(stored) != 0 {
		t.Error("delete not reflected in local storage")
	}
}

func TestRemoteModeMirrorsPerDocument(t *testing.T) {
	s, kv := newTestStore()
	remote := &fakeRemote{}
	s.UseRemote(remote, "u1")

	commit, _ := s.Add("synced", nil, nil)
	if commit.Mirror != nil {
		t.Fatalf("mirror error: %v", commit.Mirror)
	}
	if len(remote.upserts) != 1 {
		t.Fatalf("expected 1 upsert, got %d", len(remote.upserts))
	}

	toggled := s.Toggle(commit.Todo.ID)
	if toggled.Todo.UpdatedAt == nil {
		t.Error("mirrored toggle missing updated-at stamp")
	}
	if len(remote.upserts) != 2 {
		t.Errorf("expected 2 upserts, got %d", len(remote.upserts))
	}

	s.Delete(commit.Todo.ID)
	if len(remote.deletes) != 1 {
		t.Errorf("expected 1 remote delete, got %d", len(remote.deletes))
	}

	// Remote mode must not write the local todos key
	var stored []model.Todo
	if kv.LoadJSON(db.KeyTodos, &stored) {
		t.Error("remote mode wrote todos to local storage")
	}
}

func TestMirrorFailureKeepsLocalCommit(t *testing.T) {
	s, _ := newTestStore()
	remote := &fakeRemote{fail: errors.New("network down")}
	s.UseRemote(remote, "u1")

	commit, err := s.Add("optimistic", nil, nil)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if commit.Mirror == nil {
		t.Fatal("mirror failure not reported")
	}
	if len(s.Todos()) != 1 {
		t.Error("mirror failure rolled back the local add")
	}

	// Failed remote delete still removes locally
	del := s.Delete(commit.Todo.ID)
	if del.Mirror == nil {
		t.Error("mirror failure on delete not reported")
	}
	if len(s.Todos()) != 0 {
		t.Error("mirror failure restored the deleted item")
	}
}

func TestReplaceAllWholesale(t *testing.T) {
	s, _ := newTestStore()
	s.Add("local one", nil, nil)
	s.Add("local two", nil, nil)

	snapshot := []model.Todo{{ID: "r1", Text: "remote", CreatedAt: time.Now()}}
	s.ReplaceAll(snapshot)

	todos := s.Todos()
	if len(todos) != 1 || todos[0].ID != "r1" {
		t.Errorf("snapshot not applied wholesale: %v", todos)
	}
}
