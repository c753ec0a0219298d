package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for manifest handling.
var (
	// ErrNotFound indicates the directory holds no package.json.
	ErrNotFound = errors.New("manifest: package.json not found")

	// ErrParse indicates package.json is not a JSON object.
	ErrParse = errors.New("manifest: invalid package.json")
)

// SchemaError lists the places where a manifest violates the package.json
// schema.
type SchemaError struct {
	Path   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("manifest: %s failed validation: %s", e.Path, strings.Join(e.Issues, "; "))
}

// Unwrap lets errors.Is match ErrParse on schema violations.
func (e *SchemaError) Unwrap() error {
	return ErrParse
}
