package scaffold

import (
	"fmt"
	"regexp"
	"strings"
)

const maxNameLength = 214

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._~-]*$`)

// ValidateName checks a bare package name (without scope) against npm's
// naming rules.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > maxNameLength:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, maxNameLength)
	case strings.HasPrefix(name, "@") || strings.Contains(name, "/"):
		return fmt.Errorf("%w: %q must not include a scope", ErrInvalidName, name)
	case !namePattern.MatchString(name):
		return fmt.Errorf("%w: %q may only contain lowercase letters, digits, '-', '.', '_' and '~'", ErrInvalidName, name)
	}
	return nil
}
