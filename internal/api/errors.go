package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrAuthentication indicates the backend rejected the supplied credentials or token.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization indicates a role or ownership mismatch for the requested resource.
	ErrAuthorization = errors.New("not authorized")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidRequest indicates the backend rejected the request payload.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrServer indicates a backend-side failure (5xx).
	ErrServer = errors.New("server error")
	// ErrNetwork indicates the request could not complete at the transport level.
	ErrNetwork = errors.New("network failure")
	// ErrSessionExpired indicates the session could not be recovered and the
	// user must sign in again.
	ErrSessionExpired = errors.New("session expired")
)

// Error carries the backend's response for a failed call. It unwraps to the
// taxonomy sentinel matching its status code so callers can branch with
// errors.Is while still reaching the backend message and field errors.
type Error struct {
	Status  int
	Message string
	Fields  map[string][]string

	kind error
}

// Error renders the backend message when present, otherwise a generic
// description of the failure class.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Fields) > 0 {
		return e.fieldSummary()
	}
	if text := http.StatusText(e.Status); text != "" {
		return fmt.Sprintf("request failed: %s", strings.ToLower(text))
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *Error) Unwrap() error { return e.kind }

func (e *Error) fieldSummary() string {
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, strings.Join(e.Fields[key], ", ")))
	}
	return strings.Join(parts, ". ")
}

// newStatusError classifies a non-2xx response into the error taxonomy,
// preserving the backend's message or per-field validation arrays.
func newStatusError(status int, body []byte) *Error {
	apiErr := &Error{Status: status, kind: kindForStatus(status)}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	if raw, ok := payload["error"]; ok {
		var message string
		if json.Unmarshal(raw, &message) == nil {
			apiErr.Message = message
		}
		delete(payload, "error")
	}
	if raw, ok := payload["detail"]; ok {
		var message string
		if json.Unmarshal(raw, &message) == nil && apiErr.Message == "" {
			apiErr.Message = message
		}
		delete(payload, "detail")
	}

	for key, raw := range payload {
		var values []string
		if json.Unmarshal(raw, &values) == nil && len(values) > 0 {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = values
			continue
		}
		var value string
		if json.Unmarshal(raw, &value) == nil && value != "" {
			if apiErr.Fields == nil {
				apiErr.Fields = make(map[string][]string)
			}
			apiErr.Fields[key] = []string{value}
		}
	}

	return apiErr
}

func kindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden:
		return ErrAuthorization
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrInvalidRequest
	}
}
