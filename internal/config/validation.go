package config

import (
	"regexp"
	"slices"
	"strings"

	"github.com/modu-ai/pkgkit/internal/pkgmgr"
)

// Template tokens must be expanded before they reach a package.
var dynamicTokenPattern = regexp.MustCompile(`\{\{[^}]+\}\}`)

var scopePattern = regexp.MustCompile(`^@[a-z0-9][a-z0-9._~-]*$`)

// Validate checks the settings for correctness. It reports every problem
// at once as *ValidationErrors.
func Validate(s *Settings) error {
	var errs []ValidationError

	if !scopePattern.MatchString(s.Scope) {
		errs = append(errs, ValidationError{
			Field:   "scope",
			Message: "must start with @ followed by a lowercase npm scope name",
			Value:   s.Scope,
			Wrapped: ErrInvalidScope,
		})
	}
	if !slices.Contains(pkgmgr.Supported, s.PackageManager) {
		errs = append(errs, ValidationError{
			Field:   "package_manager",
			Message: "must be one of: " + strings.Join(pkgmgr.Supported, ", "),
			Value:   s.PackageManager,
			Wrapped: ErrUnsupportedPackageManager,
		})
	}
	errs = append(errs, validateDynamicTokens(s)...)

	if len(errs) > 0 {
		return &ValidationErrors{Errors: errs}
	}
	return nil
}

// validateDynamicTokens rejects values that still carry template tokens.
func validateDynamicTokens(s *Settings) []ValidationError {
	fields := []struct {
		name  string
		value string
	}{
		{"description", s.Description},
		{"author.name", s.Author.Name},
		{"author.email", s.Author.Email},
		{"author.url", s.Author.URL},
	}
	var errs []ValidationError
	for _, f := range fields {
		if dynamicTokenPattern.MatchString(f.value) {
			errs = append(errs, ValidationError{
				Field:   f.name,
				Message: "contains an unexpanded template token",
				Value:   f.value,
				Wrapped: ErrDynamicToken,
			})
		}
	}
	return errs
}
