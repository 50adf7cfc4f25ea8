package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
)

// AdminHandler serves the admin-only account endpoints.
type AdminHandler struct {
	accounts core.AccountService
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as core.AccountService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{accounts: as, logger: logger}
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.accounts.ListAccounts(c.Request.Context())
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, UsersResponse{Users: users, Count: len(users)})
}

// SetPaymentStatus handles PATCH /admin/users/:id/payment. Concurrent toggles are
// last-write-wins.
func (h *AdminHandler) SetPaymentStatus(c *gin.Context) {
	var req models.SetPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	targetID := c.Param("id")
	user, err := h.accounts.SetPaid(c.Request.Context(), targetID, *req.IsPaid)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	h.logger.Info("Admin changed payment status",
		zap.String("adminID", middleware.GetSession(c).UserID()),
		zap.String("userID", targetID),
		zap.Bool("isPaid", *req.IsPaid),
	)
	c.JSON(http.StatusOK, user)
}
