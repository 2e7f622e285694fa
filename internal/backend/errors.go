package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnauthorized means the backend rejected the credential (HTTP 401)
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means the credential lacks the admin role (HTTP 403)
	ErrForbidden = errors.New("forbidden")
	// ErrAuthentication means a login exchange was rejected
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnreachable means the request never produced an HTTP response
	ErrUnreachable = errors.New("backend unreachable")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	Op      string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed (status %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("%s failed (status %d): %s", e.Op, e.Status, e.Message)
}

// Unwrap maps authorization statuses onto their sentinels for errors.Is
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

// IsAuthorizationFailure reports whether err is a 401 or 403 from a protected request
func IsAuthorizationFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// UserMessage turns err into inline copy for the screen that issued the request
func UserMessage(err error, fallback string) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrAuthentication):
		return "Invalid credentials or server error"
	case errors.Is(err, ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, ErrForbidden):
		return "Access forbidden. Admin role required."
	case errors.Is(err, ErrUnreachable):
		return "Could not reach the server. Please try again."
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// maxMessageBytes bounds a raw error body shown to the user
const maxMessageBytes = 200

// errorMessage extracts a human-readable message from an error body
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxMessageBytes {
		cut := maxMessageBytes
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
