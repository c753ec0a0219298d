// Package migrate brings an existing package in line with the house
// conventions. It plans manifest patches and template syncs per section,
// reports the plan as a dry run by default and applies it on request.
package migrate

import "errors"

// Sentinel errors for the migrate package.
var (
	// ErrNotAProject indicates the target is not a package directory.
	ErrNotAProject = errors.New("migrate: not a package directory")

	// ErrUnknownSection indicates an --only value that names no section.
	ErrUnknownSection = errors.New("migrate: unknown section")

	// ErrDeclined indicates the user declined to migrate the detected package.
	ErrDeclined = errors.New("migrate: declined")
)
