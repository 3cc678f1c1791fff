package service

import (
	"errors"
	"net/http"
)

// User-facing messages. Upstream and fetch diagnostics never reach callers.
const (
	MsgURLRequired      = "URL is required."
	MsgInvalidURL       = "URL must be an absolute http or https address."
	MsgTopicRequired    = "Topic is required."
	MsgInvalidJSON      = "Invalid JSON in request body."
	MsgNoText           = "Could not find any meaningful text on that page."
	MsgNotConfigured    = "API key is not configured on the server."
	MsgInternal         = "An internal error occurred. Please try again."
	MsgMethodNotAllowed = "Method Not Allowed"
)

var (
	// ErrExtractionEmpty means every extraction tier came back empty.
	ErrExtractionEmpty = errors.New("no text extracted from page")
	// ErrNotConfigured means no generative API credentials are available.
	ErrNotConfigured = errors.New("generative API credentials not configured")
)

// InputError is a missing or malformed request field.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

// StatusFor maps an error from this package to an HTTP status and the
// message that is safe to show the caller.
func StatusFor(err error) (int, string) {
	var input *InputError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.As(err, &input):
		return http.StatusBadRequest, input.Message
	case errors.Is(err, ErrExtractionEmpty):
		return http.StatusBadRequest, MsgNoText
	case errors.Is(err, ErrNotConfigured):
		return http.StatusInternalServerError, MsgNotConfigured
	default:
		return http.StatusInternalServerError, MsgInternal
	}
}
