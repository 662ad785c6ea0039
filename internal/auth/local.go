package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aknott/kumo/internal/db"
)

// LocalProvider keeps accounts in the sync database, so the same
// credentials work on every device sharing the file
type LocalProvider struct {
	db       *db.DB
	verifier TokenVerifier

	// mu guards current: sign-in runs off the UI goroutine while the
	// header reads the identity on every render
	mu      sync.Mutex
	current *Identity
	changes chan *Identity
}

// NewLocalProvider wraps an open sync database. A nil verifier makes
// federated sign-in fail with ErrNoFederation.
func NewLocalProvider(database *db.DB, verifier TokenVerifier) *LocalProvider {
	return &LocalProvider{
		db:       database,
		verifier: verifier,
		changes:  make(chan *Identity, 8),
	}
}

// Identity returns the current identity, or nil when signed out
func (p *LocalProvider) Identity() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Changes delivers the identity after every transition
func (p *LocalProvider) Changes() <-chan *Identity {
	return p.changes
}

// SignUp creates an account and signs it in
func (p *LocalProvider) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	existing, err := p.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := db.User{
		ID:        uuid.New().String(),
		Email:     email,
		PassHash:  hash,
		CreatedAt: time.Now(),
	}
	if err := p.db.CreateUser(user); err != nil {
		return nil, err
	}

	return p.signedIn(user.ID, user.Email), nil
}

// SignIn authenticates against the stored credentials
func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := p.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	// Federated accounts have an empty hash and never match a password
	if bcrypt.CompareHashAndPassword([]byte(user.PassHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return p.signedIn(user.ID, user.Email), nil
}

// SignInWithToken resolves a federated token to an account, creating
// one on first sign-in
func (p *LocalProvider) SignInWithToken(ctx context.Context, token string) (*Identity, error) {
	if p.verifier == nil {
		return nil, ErrNoFederation
	}

	email, err := p.verifier(ctx, token)
	if err != nil {
		return nil, err
	}
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := p.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		created := db.User{
			ID:        uuid.New().String(),
			Email:     email,
			PassHash:  "", // federated accounts have no local password
			CreatedAt: time.Now(),
		}
		if err := p.db.CreateUser(created); err != nil {
			return nil, err
		}
		user = &created
	}

	return p.signedIn(user.ID, user.Email), nil
}

// SignOut clears the current identity
func (p *LocalProvider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = nil
	p.mu.Unlock()
	p.emit(nil)
	return nil
}

func (p *LocalProvider) signedIn(uid, email string) *Identity {
	id := &Identity{UID: uid, Email: email}
	p.mu.Lock()
	p.current = id
	p.mu.Unlock()
	p.emit(id)
	return id
}

// emit never blocks; a full buffer drops the oldest-style delivery in
// favor of the caller's returned identity
func (p *LocalProvider) emit(id *Identity) {
	select {
	case p.changes <- id:
	default:
	}
}

// hashPassword derives a bcrypt hash; the salt is embedded in the
// result, so equal passwords still store distinct hashes
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
