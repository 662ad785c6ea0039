package views

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aknott/kumo/internal/model"
	"github.com/aknott/kumo/internal/store"
)

// memKV satisfies the store's persistence slice without touching disk
type memKV struct{}

func (memKV) LoadJSON(key string, v any) bool { return false }
func (memKV) StoreJSON(key string, v any)     {}

// failingRemote rejects every mirror write
type failingRemote struct {
	err error
}

func (f failingRemote) Upsert(ctx context.Context, uid string, todo model.Todo) error {
	return f.err
}

func (f failingRemote) Delete(ctx context.Context, uid, id string) error {
	return f.err
}

func newTestListView(remoteErr error) ListView {
	st := store.New(memKV{}, nil)
	if remoteErr != nil {
		st.UseRemote(failingRemote{err: remoteErr}, "u1")
	}
	return NewListView(st).SetSize(80, 24)
}

// enterTodo drives the view through add mode: open, type, submit
func enterTodo(t *testing.T, v ListView, text string) (ListView, tea.Cmd) {
	t.Helper()

	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}})
	v = m.(ListView)
	m, _ = v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	v = m.(ListView)
	m, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return m.(ListView), cmd
}

func TestAddSurfacesMirrorFailure(t *testing.T) {
	v := newTestListView(errors.New("disk full"))

	v, cmd := enterTodo(t, v, "Buy milk")
	if cmd == nil {
		t.Fatal("submitting the new todo produced no message")
	}
	msg, ok := cmd().(ToastErrMsg)
	if !ok {
		t.Fatalf("message = %#v, want ToastErrMsg", cmd())
	}
	if !strings.Contains(msg.Err.Error(), "failed to save todo") {
		t.Errorf("warning = %q", msg.Err)
	}

	// The mirror failure is a warning, never a rollback
	todos := v.store.Todos()
	if len(todos) != 1 || todos[0].Text != "Buy milk" {
		t.Errorf("collection after failed mirror = %v", todos)
	}
}

func TestAddToastsOnSuccess(t *testing.T) {
	v := newTestListView(nil)

	_, cmd := enterTodo(t, v, "Buy milk")
	if cmd == nil {
		t.Fatal("submitting the new todo produced no message")
	}
	msg, ok := cmd().(ToastMsg)
	if !ok {
		t.Fatalf("message = %#v, want ToastMsg", cmd())
	}
	if msg.Message != "Todo added" {
		t.Errorf("toast = %q", msg.Message)
	}
}
