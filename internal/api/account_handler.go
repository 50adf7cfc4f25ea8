package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
)

// SessionManager announces sign-in and performs sign-out. Implemented by session.Provider.
type SessionManager interface {
	SignIn(identity models.Identity)
	SignOut(ctx context.Context, uid string) error
}

// AccountHandler handles the current user's account endpoints.
type AccountHandler struct {
	accounts core.AccountService
	listings core.ListingService
	sessions SessionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as core.AccountService, ls core.ListingService, sm SessionManager, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: as, listings: ls, sessions: sm, logger: logger, now: time.Now}
}

// InitializeProfile handles POST /users/initialize. It is idempotent: an existing account is
// returned unchanged with 200, a new one with 201.
func (h *AccountHandler) InitializeProfile(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.Authenticated() {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}

	var req models.InitializeProfileRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
			return
		}
	}

	user, created, err := h.accounts.InitializeProfile(c.Request.Context(), *sess.Identity, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.sessions.SignIn(*sess.Identity)
		h.logger.Info("Initialized user profile", zap.String("userID", user.ID))
	}
	c.JSON(status, InitializeProfileResponse{
		AccountResponse: AccountResponse{User: user, Tier: core.ResolveAccessTier(user, h.now())},
		Created:         created,
	})
}

// GetCurrentUser handles GET /users/me.
func (h *AccountHandler) GetCurrentUser(c *gin.Context) {
	sess := middleware.GetSession(c)
	if !sess.Authenticated() {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}
	if sess.Account == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   core.ErrUserNotFound.Error(),
			Details: "Profile not initialized; call POST /api/v1/users/initialize",
		})
		return
	}
	c.JSON(http.StatusOK, AccountResponse{User: sess.Account, Tier: sess.Tier})
}

// ListMyListings handles GET /users/me/listings.
func (h *AccountHandler) ListMyListings(c *gin.Context) {
	uid := middleware.GetSession(c).UserID()
	if uid == "" {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}

	listings, err := h.listings.ListOwnerListings(c.Request.Context(), uid)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// SignOut handles POST /auth/signout.
func (h *AccountHandler) SignOut(c *gin.Context) {
	uid := middleware.GetSession(c).UserID()
	if uid == "" {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}

	if err := h.sessions.SignOut(c.Request.Context(), uid); err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Signed out"})
}
