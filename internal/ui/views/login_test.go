package views

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aknott/kumo/internal/auth"
)

// stubProvider holds a fixed identity for view tests
type stubProvider struct {
	identity *auth.Identity
}

func (s *stubProvider) Identity() *auth.Identity { return s.identity }

func (s *stubProvider) SignUp(ctx context.Context, email, password string) (*auth.Identity, error) {
	return nil, errors.New("not supported")
}

func (s *stubProvider) SignIn(ctx context.Context, email, password string) (*auth.Identity, error) {
	return nil, errors.New("not supported")
}

func (s *stubProvider) SignInWithToken(ctx context.Context, token string) (*auth.Identity, error) {
	return nil, errors.New("not supported")
}

func (s *stubProvider) SignOut(ctx context.Context) error {
	s.identity = nil
	return nil
}

func (s *stubProvider) Changes() <-chan *auth.Identity { return nil }

func TestLoginEscLeavesForm(t *testing.T) {
	v := NewLoginView(&stubProvider{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no message")
	}
	if _, ok := cmd().(BackRequest); !ok {
		t.Fatalf("message = %#v, want BackRequest", cmd())
	}
}

func TestLoginEscLeavesFormAfterTyping(t *testing.T) {
	v := NewLoginView(&stubProvider{})

	m, _ := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a@b.com")})
	v = m.(LoginView)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc produced no message")
	}
	if _, ok := cmd().(BackRequest); !ok {
		t.Fatalf("message = %#v, want BackRequest", cmd())
	}
}

func TestLoginInputModeTracksSession(t *testing.T) {
	p := &stubProvider{}
	v := NewLoginView(p)

	if !v.IsInputMode() {
		t.Error("signed-out form should capture input")
	}

	p.identity = &auth.Identity{UID: "u1", Email: "a@b.com"}
	if v.IsInputMode() {
		t.Error("signed-in account view should not capture input")
	}
}
