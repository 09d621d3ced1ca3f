package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUnauthorized matches 401 and 403 responses (missing or expired token,
	// or insufficient role).
	ErrUnauthorized = errors.New("apiclient: unauthorized")
	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("apiclient: not found")
)

// APIError is a non-2xx response from the marketplace API. Message is the
// most specific human-readable text the API sent.
type APIError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("apiclient: %s %s: status %d", e.Method, e.Endpoint, e.Status)
	}
	return fmt.Sprintf("apiclient: %s %s: status %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// Is lets callers use errors.Is(err, ErrUnauthorized) / ErrNotFound.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// DecodeError means the API answered 2xx but the body was not the
// expected envelope or content shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("apiclient: decode %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// newAPIError prefers a string "content" (the API puts field errors there),
// then "message", then the raw body.
func newAPIError(method, endpoint string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Endpoint: endpoint, Status: status}

	var env struct {
		Message string          `json:"message"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(body, &env); err == nil {
		var s string
		if len(env.Content) > 0 && json.Unmarshal(env.Content, &s) == nil && strings.TrimSpace(s) != "" {
			e.Message = strings.TrimSpace(s)
			return e
		}
		if strings.TrimSpace(env.Message) != "" {
			e.Message = strings.TrimSpace(env.Message)
			return e
		}
	}
	e.Message = strings.TrimSpace(string(body))
	return e
}

// Message extracts a user-facing message from err, or fallback when err
// did not come from the API.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
