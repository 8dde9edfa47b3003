package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
)

// ErrConfigRequired is returned by New when no config is given.
var ErrConfigRequired = errors.New("config is required")

// ErrEmptyID is returned when an item operation is called without an id.
var ErrEmptyID = errors.New("item id is required")

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	// Code and Message are set when the gateway answered with a JSON error
	// body, e.g. "backend_error".
	Code    string
	Message string
	Body    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return "server error: " + strconv.Itoa(e.StatusCode) + " " + e.Code + " - " + e.Message
	}
	return "server error: " + strconv.Itoa(e.StatusCode) + " - " + e.Body
}

// Is reports whether target matches this error.
// It matches if target is an *APIError with the same StatusCode.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.StatusCode == e.StatusCode
}

// IsBackendError reports whether the gateway blamed the backend.
func (e *APIError) IsBackendError() bool {
	return e.Code == "backend_error"
}

// Sentinel errors for common API error conditions.
// Use errors.Is() to check for these conditions.
var (
	// ErrNotFound is returned when the item does not exist (404).
	ErrNotFound = &APIError{StatusCode: http.StatusNotFound}

	// ErrBadRequest is returned for malformed bodies or missing fields (400).
	ErrBadRequest = &APIError{StatusCode: http.StatusBadRequest}

	// ErrServer is returned when the gateway or its backend failed (500).
	ErrServer = &APIError{StatusCode: http.StatusInternalServerError}
)

func parseServerError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Code = payload.Error
		apiErr.Message = payload.Message
	}
	return apiErr
}
