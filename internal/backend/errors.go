package backend

import (
	"context"
	"errors"
	"fmt"

	"parkingconsole/internal/validation"
)

// DefaultErrorMessage is shown when neither the backend nor the call site has anything better
const DefaultErrorMessage = "An unexpected error occurred"

const unavailableMessage = "The parking service is temporarily unavailable"

var (
	ErrTransport      = errors.New("backend unreachable")
	ErrMissingToken   = errors.New("no token received")
	ErrMissingPayload = errors.New("no data received")
	ErrCircuitOpen    = errors.New("backend circuit open")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend returned status %d", e.Status)
	}
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Message)
}

// IsStatus reports whether err is an APIError with the given status
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// UserMessage picks the text to show for err. It returns "" for cancelled
// calls, which were superseded and need no notification.
func UserMessage(err error, fallback string) string {
	if err == nil || errors.Is(err, context.Canceled) {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if fallback != "" {
			return fallback
		}
		return DefaultErrorMessage
	}

	var vErr validation.ValidationError
	if errors.As(err, &vErr) {
		return vErr.Error()
	}

	if errors.Is(err, ErrCircuitOpen) {
		return unavailableMessage
	}
	return DefaultErrorMessage
}
