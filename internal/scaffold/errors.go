// Package scaffold creates new packages: it picks a package type and
// features, deploys the package template and applies the features.
package scaffold

import "errors"

// Sentinel errors for the create pipeline.
var (
	// ErrUnknownPackageType indicates a package type id that is not defined.
	ErrUnknownPackageType = errors.New("scaffold: unknown package type")

	// ErrInvalidName indicates a package name npm would reject.
	ErrInvalidName = errors.New("scaffold: invalid package name")

	// ErrNameRequired indicates headless create without a package name.
	ErrNameRequired = errors.New("scaffold: package name is required in non-interactive mode")
)
