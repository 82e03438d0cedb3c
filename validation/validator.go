package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kbukum/clinicq/errors"
)

// FieldError is a validation failure for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseID parses a path or query identifier that must be a UUID.
func ParseID(field, value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", errors.MissingField(field)
	}
	id, err := uuid.Parse(value)
	if err != nil || id == uuid.Nil {
		return "", errors.InvalidInput(field, fmt.Sprintf("%s must be a valid UUID", field))
	}
	return id.String(), nil
}

// OptionalID is ParseID for values that may be absent. An empty value yields
// an empty id and no error.
func OptionalID(field, value string) (string, error) {
	if value == "" {
		return "", nil
	}
	return ParseID(field, value)
}
