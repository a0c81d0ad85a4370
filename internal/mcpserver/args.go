package mcpserver

import (
	"fmt"
	"strings"
)

// Require returns an error naming the first pair whose value is blank.
// Arguments alternate name, value.
func Require(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return fmt.Errorf("%s is required", pairs[i])
		}
	}
	return nil
}

// Limit clamps a caller supplied page size into [1, max], using def when unset.
func Limit(v, def, max int) int {
	switch {
	case v <= 0:
		return def
	case v > max:
		return max
	default:
		return v
	}
}

// OneOf validates v against the allowed values. Blank v is accepted.
func OneOf(name, v string, allowed ...string) error {
	if v == "" {
		return nil
	}
	for _, a := range allowed {
		if v == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", name, strings.Join(allowed, ", "), v)
}
