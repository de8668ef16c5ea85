package apperrors

import "errors"

var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlertNotFound       = errors.New("alert not found")
	ErrPurchaseNotFound    = errors.New("purchase not found")
	ErrPlatformNotEnabled  = errors.New("platform not enabled")
	ErrPlatformRateLimited = errors.New("platform rate limited")
	ErrInvalidQuantity     = errors.New("Quantity must be at least 1")
	ErrInvalidStatus       = errors.New("invalid purchase status transition")
	ErrNotEligible         = errors.New("purchase not allowed")
	ErrScheduleNotFound    = errors.New("scheduled scraping job not found")
	ErrInternalServerError = errors.New("internal server error")
)
