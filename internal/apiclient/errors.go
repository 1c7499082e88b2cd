package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UnknownErrorMessage is used when neither the body nor the transport said anything useful
const UnknownErrorMessage = "Unknown error occurred"

// Error is a failed call. StatusCode is 0 when no response was received.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Transport reports whether the call failed without a response
func (e *Error) Transport() bool {
	return e.StatusCode == 0
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// ErrorMessage extracts a human-readable message from err.
// Priority: the body's "message" field, then the body itself, then the transport text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return UnknownErrorMessage
	}

	if msg, ok := bodyMessage(apiErr.Body); ok {
		return msg
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return UnknownErrorMessage
}

// bodyMessage returns the message for a non-empty error body
func bodyMessage(body []byte) (string, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", false
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		return string(body), true
	}

	switch v := decoded.(type) {
	case nil:
		return "", false
	case string:
		if v == "" {
			return "", false
		}
		return v, true
	case map[string]any:
		if msg, ok := v["message"].(string); ok && msg != "" {
			return msg, true
		}
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return string(trimmed), true
	}
	return compact.String(), true
}
