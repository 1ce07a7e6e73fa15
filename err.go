package plank

import (
	"fmt"

	"github.com/plankhq/plank.go/pkg/models"
)

// FieldError reports a failure to load or decode a single field of a
// resource.
type FieldError struct {
	Kind  string
	ID    models.ID
	Field string

	cause error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s/%s: field %q: %v", e.Kind, e.ID, e.Field, e.cause)
}

func (e *FieldError) Unwrap() error {
	return e.cause
}
