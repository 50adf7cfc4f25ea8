package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/models"
	"github.com/example/rentalhub/internal/session"
)

// Gin context keys set by the auth middleware.
const (
	ContextUserIDKey  = "userID"
	ContextSessionKey = "session"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/auth/login"

// ErrorResponse mirrors api.ErrorResponse; it lives here to avoid an import cycle.
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	RedirectTo string `json:"redirectTo,omitempty"`
}

// IdentityVerifier turns an ID token into a verified identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*models.Identity, error)
}

// AccountLoader loads the account of a verified identity.
type AccountLoader interface {
	GetAccount(ctx context.Context, userID string) (*models.User, error)
}

// AuthMiddleware authenticates requests with Firebase ID tokens and attaches a session.
type AuthMiddleware struct {
	verifier IdentityVerifier
	accounts AccountLoader
	logger   *zap.Logger
	now      func() time.Time
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier IdentityVerifier, accounts AccountLoader, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, accounts: accounts, logger: logger, now: time.Now}
}

// LoginRedirect returns the login URL that brings the client back to requestURI.
func LoginRedirect(requestURI string) string {
	return LoginPath + "?next=" + url.QueryEscape(requestURI)
}

func abortUnauthenticated(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
		Error:      core.ErrAuthRequired.Error(),
		Details:    msg,
		RedirectTo: LoginRedirect(c.Request.URL.RequestURI()),
	})
}

func bearerToken(c *gin.Context) (string, bool, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false, nil
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, errors.New("Authorization header format must be 'Bearer {token}'")
	}
	return parts[1], true, nil
}

// VerifyToken requires a valid ID token. Failures get a 401 carrying the login redirect.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present {
			abortUnauthenticated(c, "Authorization header is required")
			return
		}
		if err != nil {
			abortUnauthenticated(c, err.Error())
			return
		}

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			m.logger.Warn("Rejected ID token", zap.Error(err), zap.String("path", c.Request.URL.Path))
			abortUnauthenticated(c, "Invalid or expired authentication token")
			return
		}

		sess, err := m.loadSession(c.Request.Context(), identity)
		if err != nil {
			m.logger.Error("Failed to load session account", zap.String("userID", identity.UID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, ErrorResponse{Error: "Failed to load account"})
			return
		}
		setSession(c, sess)
		c.Next()
	}
}

// OptionalToken attaches a session when a valid token is present and lets anonymous requests
// through. A bad token is treated as anonymous so browsing never breaks.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, present, err := bearerToken(c)
		if !present || err != nil {
			setSession(c, &session.Session{})
			c.Next()
			return
		}

		identity, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			m.logger.Debug("Ignoring invalid optional token", zap.Error(err))
			setSession(c, &session.Session{})
			c.Next()
			return
		}

		sess, err := m.loadSession(c.Request.Context(), identity)
		if err != nil {
			m.logger.Warn("Account unavailable; continuing with locked content", zap.String("userID", identity.UID), zap.Error(err))
			sess = &session.Session{Identity: identity}
		}
		setSession(c, sess)
		c.Next()
	}
}

// RequireAdmin must run after VerifyToken.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: core.ErrForbiddenAccess.Error(), Details: "Admin access required"})
			return
		}
		c.Next()
	}
}

// loadSession resolves the account and its access tier. A missing account is not an error:
// the profile has simply not been initialized yet.
func (m *AuthMiddleware) loadSession(ctx context.Context, identity *models.Identity) (*session.Session, error) {
	sess := &session.Session{Identity: identity}
	account, err := m.accounts.GetAccount(ctx, identity.UID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			sess.Tier = core.ResolveAccessTier(nil, m.now())
			return sess, nil
		}
		return nil, err
	}
	sess.Account = account
	sess.Tier = core.ResolveAccessTier(account, m.now())
	return sess, nil
}

func setSession(c *gin.Context, sess *session.Session) {
	c.Set(ContextSessionKey, sess)
	if sess.Authenticated() {
		c.Set(ContextUserIDKey, sess.Identity.UID)
	}
}

// GetSession returns the session attached by the auth middleware, or an anonymous one.
func GetSession(c *gin.Context) *session.Session {
	if v, ok := c.Get(ContextSessionKey); ok {
		if sess, ok := v.(*session.Session); ok {
			return sess
		}
	}
	return &session.Session{}
}
