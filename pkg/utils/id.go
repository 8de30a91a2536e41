package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID returns a new random UUID string.
func GenerateID() string {
	return uuid.NewString()
}

// ParseID returns the canonical lowercase form of a UUID taken from a path
// or query parameter.
func ParseID(raw string) (string, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	return id.String(), true
}
