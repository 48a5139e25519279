package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a structured failure from the remote store.
//
// Message prefers details[0].message from the error envelope, falling back to
// the top-level error string.
type Error struct {
	Status  int
	Message string
	Details []string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return fmt.Sprintf("api: status %d", e.Status)
}

// IsValidation reports whether err is an API validation failure carrying
// per-field details. These surface inline; they never get a structured-less
// rollback treatment.
func IsValidation(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusUnprocessableEntity || len(apiErr.Details) > 0
}

func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
