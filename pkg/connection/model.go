package connection

import (
	"fmt"
	"net/http"

	"github.com/plankhq/plank.go/pkg/constants"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	Status    int    `json:"status"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("service returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("service returned %d", e.Status)
}

// Unwrap maps well-known statuses onto the package sentinel errors so
// callers can test with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return constants.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return constants.ErrUnauthorized
	case http.StatusTooManyRequests:
		return constants.ErrRateLimited
	}
	return nil
}
