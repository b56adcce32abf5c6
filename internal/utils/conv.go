package utils

import (
	"strconv"
)

// ParseID parses a positive numeric id from a route parameter.
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, NewValidationError("invalid id %q", s)
	}
	return uint(id), nil
}
