package handlers

import (
	"log"
	"net/http"
)

// respondWithError sends userMsg as a plain text refusal. err, when set, is
// logged under logMsg and never shown to the browser.
func respondWithError(w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Printf("%s (status %d): %v", logMsg, status, err)
	}

	// Refusals depend on the session
	w.Header().Set("Cache-Control", "no-store")
	http.Error(w, userMsg, status)
}

// statusMessage is the body sent with a bare refusal
func statusMessage(status int) string {
	switch status {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusServiceUnavailable:
		return ErrSessionUnavailable
	case http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return http.StatusText(status)
	}
}
