package store

import (
	"strings"

	"github.com/google/uuid"

	"folio/internal/errs"
)

// NewID returns a fresh view or workspace id.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that an explicit id is a well-formed UUID and returns its canonical form.
func ValidateID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	u, err := uuid.Parse(id)
	if err != nil {
		return "", errs.InvalidID(kind, id, err)
	}
	return u.String(), nil
}
