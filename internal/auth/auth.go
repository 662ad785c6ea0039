// Package auth supplies the session identity that gates persistence
// mode. Accounts live in the sync database; federated sign-in delegates
// to an injectable token verifier.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrInvalidEmail       = errors.New("enter a valid email address")
	ErrNoFederation       = errors.New("federated sign-in is not configured")
)

// Identity is the signed-in user, or absent
type Identity struct {
	UID   string
	Email string
}

// Provider exposes the current identity and the sign-in operations.
// Operation errors are surfaced to the user verbatim.
type Provider interface {
	// Identity returns the current identity, or nil when signed out
	Identity() *Identity

	SignUp(ctx context.Context, email, password string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)

	// SignInWithToken performs federated sign-in with an externally
	// issued token
	SignInWithToken(ctx context.Context, token string) (*Identity, error)

	SignOut(ctx context.Context) error

	// Changes delivers the identity after every transition: a value on
	// sign-in, nil on sign-out
	Changes() <-chan *Identity
}

// TokenVerifier validates a federated token and resolves it to an
// email address
type TokenVerifier func(ctx context.Context, token string) (email string, err error)
