package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aknott/kumo/internal/db"
)

func newProvider(t *testing.T, verifier TokenVerifier) *LocalProvider {
	t.Helper()
	database, err := db.Open(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewLocalProvider(database, verifier)
}

func TestSignUpAndSignIn(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	id, err := p.SignUp(ctx, "User@Example.com", "secret1")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if id.UID == "" || id.Email != "user@example.com" {
		t.Errorf("identity = %+v", id)
	}
	if p.Identity() == nil {
		t.Error("sign-up did not establish an identity")
	}

	if err := p.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if p.Identity() != nil {
		t.Error("identity survived sign-out")
	}

	again, err := p.SignIn(ctx, "user@example.com", "secret1")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if again.UID != id.UID {
		t.Error("sign-in resolved a different account")
	}
}

func TestSignUpValidation(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	if _, err := p.SignUp(ctx, "not-an-email", "secret1"); !errors.Is(err, ErrInvalidEmail) {
		t.Errorf("bad email error = %v", err)
	}
	if _, err := p.SignUp(ctx, "a@b.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("weak password error = %v", err)
	}

	p.SignUp(ctx, "a@b.com", "secret1")
	if _, err := p.SignUp(ctx, "a@b.com", "different1"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("duplicate email error = %v", err)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	p.SignUp(ctx, "a@b.com", "secret1")
	p.SignOut(ctx)

	if _, err := p.SignIn(ctx, "a@b.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := p.SignIn(ctx, "nobody@b.com", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
	if p.Identity() != nil {
		t.Error("failed sign-in established an identity")
	}
}

func TestChangesDeliverTransitions(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	p.SignUp(ctx, "a@b.com", "secret1")
	select {
	case id := <-p.Changes():
		if id == nil || id.Email != "a@b.com" {
			t.Errorf("change = %+v", id)
		}
	default:
		t.Fatal("no change delivered on sign-up")
	}

	p.SignOut(ctx)
	select {
	case id := <-p.Changes():
		if id != nil {
			t.Errorf("sign-out change = %+v", id)
		}
	default:
		t.Fatal("no change delivered on sign-out")
	}
}

func TestFederatedSignIn(t *testing.T) {
	verifier := func(ctx context.Context, token string) (string, error) {
		if token != "good-token" {
			return "", errors.New("token rejected")
		}
		return "fed@example.com", nil
	}
	p := newProvider(t, verifier)
	ctx := context.Background()

	id, err := p.SignInWithToken(ctx, "good-token")
	if err != nil {
		t.Fatalf("federated sign-in failed: %v", err)
	}
	if id.Email != "fed@example.com" {
		t.Errorf("identity = %+v", id)
	}

	// Same token resolves to the same account
	p.SignOut(ctx)
	again, err := p.SignInWithToken(ctx, "good-token")
	if err != nil {
		t.Fatalf("second federated sign-in failed: %v", err)
	}
	if again.UID != id.UID {
		t.Error("federated sign-in created a second account")
	}

	if _, err := p.SignInWithToken(ctx, "bad"); err == nil {
		t.Error("rejected token signed in")
	}

	// Federated accounts cannot sign in with a password
	if _, err := p.SignIn(ctx, "fed@example.com", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("password sign-in to federated account: %v", err)
	}
}

func TestIdentityConcurrentWithSignIn(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	p.SignUp(ctx, "a@b.com", "secret1")
	p.SignOut(ctx)

	// Sign-in runs off the update loop while the header polls the
	// identity on every render
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			p.SignIn(ctx, "a@b.com", "secret1")
			p.SignOut(ctx)
		}
	}()

	for {
		select {
		case <-done:
			if p.Identity() != nil {
				t.Error("identity survived the final sign-out")
			}
			return
		default:
			p.Identity()
		}
	}
}

func TestEqualPasswordsStoreDistinctHashes(t *testing.T) {
	p := newProvider(t, nil)
	ctx := context.Background()

	p.SignUp(ctx, "a@b.com", "secret1")
	p.SignUp(ctx, "b@b.com", "secret1")

	ua, err := p.db.GetUserByEmail("a@b.com")
	if err != nil || ua == nil {
		t.Fatalf("GetUserByEmail: %v %v", ua, err)
	}
	ub, _ := p.db.GetUserByEmail("b@b.com")

	if ua.PassHash == "secret1" || ub.PassHash == "secret1" {
		t.Fatal("password stored in the clear")
	}
	if ua.PassHash == ub.PassHash {
		t.Error("equal passwords produced equal hashes")
	}
}

func TestNoFederationConfigured(t *testing.T) {
	p := newProvider(t, nil)
	if _, err := p.SignInWithToken(context.Background(), "any"); !errors.Is(err, ErrNoFederation) {
		t.Errorf("error = %v", err)
	}
}
