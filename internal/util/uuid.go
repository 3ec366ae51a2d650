package util

import (
	"strings"

	"github.com/google/uuid"
)

// IsValidUUID reports whether s is a UUID in the dashed 8-4-4-4-12 form.
func IsValidUUID(s string) bool {
	if len(s) != 36 || strings.Count(s, "-") != 4 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

const abbreviatedUUIDPrefixLength = 4

// AbbreviateUUID returns a shortened representation of a UUID suitable for text output.
// When the value is not a UUID, the original value is returned unchanged.
func AbbreviateUUID(id string) string {
	if !IsValidUUID(id) {
		return id
	}
	return id[:abbreviatedUUIDPrefixLength] + "…"
}
