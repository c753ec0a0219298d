package template

import "errors"

// Sentinel errors for template operations.
var (
	// ErrTemplateNotFound indicates the requested template path does not exist.
	ErrTemplateNotFound = errors.New("template: not found")

	// ErrPathTraversal indicates a template path would escape its destination root.
	ErrPathTraversal = errors.New("template: path traversal detected")

	// ErrTargetNotEmpty indicates a scaffold destination already has content.
	ErrTargetNotEmpty = errors.New("template: target directory is not empty")
)
