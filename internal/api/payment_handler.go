package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/middleware"
	"github.com/example/rentalhub/internal/models"
)

// PaymentHandler handles payment verification.
type PaymentHandler struct {
	payments core.PaymentService
	logger   *zap.Logger
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps core.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{payments: ps, logger: logger}
}

// VerifyPayment handles POST /payments/verify.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	uid := middleware.GetSession(c).UserID()
	if uid == "" {
		mapServiceErrorToStatus(c, h.logger, core.ErrAuthRequired)
		return
	}

	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	txn, err := h.payments.VerifyPayment(c.Request.Context(), uid, req)
	if err != nil {
		mapServiceErrorToStatus(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, PaymentResponse{
		Message:     "Payment verified. Premium content is now unlocked.",
		Transaction: txn,
	})
}
