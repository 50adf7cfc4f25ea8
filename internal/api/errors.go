package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/example/rentalhub/internal/core"
	"github.com/example/rentalhub/internal/middleware"
)

// mapServiceErrorToStatus maps errors from the core services to HTTP status codes and
// an ErrorResponse.
func mapServiceErrorToStatus(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrAuthRequired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{
			Error:      core.ErrAuthRequired.Error(),
			RedirectTo: middleware.LoginRedirect(c.Request.URL.RequestURI()),
		}
	case errors.Is(err, core.ErrValidation):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case errors.Is(err, core.ErrListingNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrListingNotFound.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrForbiddenAccess):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbiddenAccess.Error()}
	case errors.Is(err, core.ErrContentLocked):
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: core.ErrContentLocked.Error()}
	case errors.Is(err, core.ErrPaymentRejected):
		statusCode = http.StatusPaymentRequired
		errResponse = ErrorResponse{Error: core.ErrPaymentRejected.Error(), Details: "Check the transaction ID and phone number on your receipt"}
	case errors.Is(err, core.ErrTransactionAlreadyUsed):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrTransactionAlreadyUsed.Error()}
	case errors.Is(err, core.ErrUpstream):
		logger.Error("Upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "A backing service is unavailable. Please try again."}
	default:
		logger.Error("Internal Server Error", zap.String("path", c.FullPath()), zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}
