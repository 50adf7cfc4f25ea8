// Package session is the single place identity changes flow through. Subscribers register
// once with OnIdentityChange; the HTTP layer attaches a Session to every request.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/models"
)

// ErrInvalidToken is returned when an ID token cannot be verified or has been revoked.
var ErrInvalidToken = errors.New("invalid or revoked id token")

// TokenAuthority is the subset of the Firebase Auth client the provider needs.
type TokenAuthority interface {
	VerifyIDTokenAndCheckRevoked(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// ChangeFunc receives the uid whose identity changed and the new identity, nil on sign-out.
type ChangeFunc func(uid string, identity *models.Identity)

// Provider verifies ID tokens and fans identity changes out to subscribers.
type Provider struct {
	authority TokenAuthority
	logger    *zap.Logger

	mu     sync.RWMutex
	nextID int
	subs   map[int]ChangeFunc
}

// NewProvider creates a Provider around a Firebase Auth client.
func NewProvider(authority TokenAuthority, logger *zap.Logger) *Provider {
	return &Provider{authority: authority, logger: logger, subs: map[int]ChangeFunc{}}
}

// OnIdentityChange registers cb and returns a func that removes it. The unsubscribe func is
// idempotent.
func (p *Provider) OnIdentityChange(cb ChangeFunc) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = cb
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			p.mu.Unlock()
		})
	}
}

func (p *Provider) notify(uid string, identity *models.Identity) {
	p.mu.RLock()
	subs := make([]ChangeFunc, 0, len(p.subs))
	for _, cb := range p.subs {
		subs = append(subs, cb)
	}
	p.mu.RUnlock()

	for _, cb := range subs {
		cb(uid, identity)
	}
}

// Verify checks an ID token, including revocation, and returns the identity it carries.
func (p *Provider) Verify(ctx context.Context, idToken string) (*models.Identity, error) {
	token, err := p.authority.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	identity := &models.Identity{UID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}

// SignIn announces a freshly initialized identity to subscribers.
func (p *Provider) SignIn(identity models.Identity) {
	p.notify(identity.UID, &identity)
}

// SignOut revokes the user's refresh tokens and tells subscribers the identity is gone.
func (p *Provider) SignOut(ctx context.Context, uid string) error {
	if err := p.authority.RevokeRefreshTokens(ctx, uid); err != nil {
		p.logger.Error("Failed to revoke refresh tokens", zap.String("userID", uid), zap.Error(err))
		return fmt.Errorf("%w: %v", core.ErrUpstream, err)
	}
	p.notify(uid, nil)
	return nil
}

// Session is the per-request view of the caller.
type Session struct {
	Identity *models.Identity
	// Account is nil until the profile has been initialized.
	Account *models.User
	Tier    models.AccessTier
}

// Authenticated reports whether a verified identity is attached.
func (s *Session) Authenticated() bool {
	return s != nil && s.Identity != nil
}

// IsAdmin reports whether the account carries the admin flag.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Account != nil && s.Account.IsAdmin
}

// UserID returns the caller uid or "".
func (s *Session) UserID() string {
	if !s.Authenticated() {
		return ""
	}
	return s.Identity.UID
}

// Viewer converts the session into the value the services use for gating.
func (s *Session) Viewer() core.Viewer {
	if !s.Authenticated() {
		return core.Viewer{}
	}
	return core.Viewer{UserID: s.Identity.UID, IsAdmin: s.IsAdmin(), Tier: s.Tier}
}
