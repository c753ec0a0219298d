package ui

import "errors"

var (
	// ErrCancelled indicates the user aborted a prompt.
	ErrCancelled = errors.New("ui: cancelled")

	// ErrHeadless indicates a prompt was requested without a terminal.
	ErrHeadless = errors.New("ui: prompt requires an interactive terminal")
)
