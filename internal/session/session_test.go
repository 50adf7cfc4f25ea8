package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/models"
)

type fakeAuthority struct {
	tokens    map[string]*auth.Token
	revokeErr error
	revoked   []string
}

func (f *fakeAuthority) VerifyIDTokenAndCheckRevoked(_ context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f.tokens[idToken]
	if !ok {
		return nil, errors.New("id token has invalid signature")
	}
	return tok, nil
}

func (f *fakeAuthority) RevokeRefreshTokens(_ context.Context, uid string) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	f.revoked = append(f.revoked, uid)
	return nil
}

func TestProvider_Verify(t *testing.T) {
	fa := &fakeAuthority{tokens: map[string]*auth.Token{
		"good": {UID: "u1", Claims: map[string]interface{}{"email": "t@example.com", "name": "Tendai"}},
	}}
	p := NewProvider(fa, zap.NewNop())

	id, err := p.Verify(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, models.Identity{UID: "u1", Email: "t@example.com", Name: "Tendai"}, *id)

	_, err = p.Verify(context.Background(), "forged")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProvider_SignOutNotifiesSubscribers(t *testing.T) {
	fa := &fakeAuthority{}
	p := NewProvider(fa, zap.NewNop())

	var mu sync.Mutex
	var got []string
	unsubscribe := p.OnIdentityChange(func(uid string, identity *models.Identity) {
		mu.Lock()
		defer mu.Unlock()
		if identity == nil {
			got = append(got, "out:"+uid)
			return
		}
		got = append(got, "in:"+uid)
	})

	p.SignIn(models.Identity{UID: "u1"})
	require.NoError(t, p.SignOut(context.Background(), "u1"))
	assert.Equal(t, []string{"in:u1", "out:u1"}, got)
	assert.Equal(t, []string{"u1"}, fa.revoked)

	unsubscribe()
	unsubscribe()
	require.NoError(t, p.SignOut(context.Background(), "u2"))
	assert.Len(t, got, 2, "unsubscribed callbacks are not invoked")
}

func TestProvider_SignOutFailure(t *testing.T) {
	fa := &fakeAuthority{revokeErr: errors.New("auth backend unavailable")}
	p := NewProvider(fa, zap.NewNop())

	called := false
	p.OnIdentityChange(func(string, *models.Identity) { called = true })

	err := p.SignOut(context.Background(), "u1")
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.False(t, called)
}

func TestSession_Viewer(t *testing.T) {
	var anon *Session
	assert.False(t, anon.Authenticated())
	assert.True(t, anon.Viewer().Anonymous())

	tier := models.AccessTier{TrialStatus: models.TrialActive, DaysLeft: 4, ContentUnlocked: true}
	s := &Session{
		Identity: &models.Identity{UID: "u1"},
		Account:  &models.User{ID: "u1", IsAdmin: true},
		Tier:     tier,
	}
	assert.Equal(t, core.Viewer{UserID: "u1", IsAdmin: true, Tier: tier}, s.Viewer())

	noAccount := &Session{Identity: &models.Identity{UID: "u2"}}
	assert.False(t, noAccount.IsAdmin())
	assert.Equal(t, "u2", noAccount.UserID())
}
