package core

import "errors"

// Sentinel errors shared by the services. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrUpstream               = errors.New("upstream service failure")
	ErrValidation             = errors.New("validation failed")
	ErrAuthRequired           = errors.New("authentication required")
	ErrForbiddenAccess        = errors.New("user does not have permission for this action")
	ErrContentLocked          = errors.New("premium content is locked; start a trial or pay to unlock")
	ErrListingNotFound        = errors.New("listing not found")
	ErrUserNotFound           = errors.New("user not found")
	ErrPaymentRejected        = errors.New("payment could not be verified")
	ErrTransactionAlreadyUsed = errors.New("transaction id has already been used")
)
