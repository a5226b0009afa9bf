package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRFToken    = "Invalid or missing CSRF token"
	ErrTooManyRequests     = "Too many requests, please try again later"
	ErrSessionUnavailable  = "Session temporarily unavailable"
	ErrInternalServerError = "Internal server error"

	errPasswordsDoNotMatch = "Passwords do not match"
	errMissingEmail        = "No email address found for this session"
	errSessionExpired      = "Your session has expired, please sign in again"
)
