package llm

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// UpstreamError reports a failed call to a generative API or its token
// endpoint. It carries upstream diagnostics meant for logs only.
type UpstreamError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	b.WriteString(e.Service)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// AsUpstream converts a provider SDK error into an *UpstreamError for
// service, keeping the status and message the API reported.
func AsUpstream(service string, err error) error {
	if err == nil {
		return nil
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{Service: service, StatusCode: apiErr.Code, Message: apiErr.Message, Err: err}
	}
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return &UpstreamError{Service: service, StatusCode: genaiErr.Code, Message: genaiErr.Message, Err: err}
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) {
		return &UpstreamError{Service: service, StatusCode: genaiPtr.Code, Message: genaiPtr.Message, Err: err}
	}
	return &UpstreamError{Service: service, Err: err}
}
