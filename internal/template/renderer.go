package template

import (
	"bytes"
	"fmt"
	"io/fs"
	"regexp"
	"unicode/utf8"
)

// Vars maps placeholder names to their values. Placeholders in templates
// are written {{NAME}}.
type Vars map[string]string

// tokenPattern matches {{NAME}} placeholders with optional inner spaces.
var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Z][A-Z0-9_]*)\s*\}\}`)

// Substitute replaces every known placeholder in content. Unknown
// placeholders are left as written.
func Substitute(content []byte, vars Vars) []byte {
	if len(vars) == 0 {
		return content
	}
	return tokenPattern.ReplaceAllFunc(content, func(match []byte) []byte {
		name := tokenPattern.FindSubmatch(match)[1]
		if v, ok := vars[string(name)]; ok {
			return []byte(v)
		}
		return match
	})
}

// isBinary reports whether content should be copied verbatim.
func isBinary(content []byte) bool {
	head := content
	if len(head) > 8000 {
		head = head[:8000]
	}
	return bytes.IndexByte(head, 0) >= 0 || !utf8.Valid(head)
}

// Renderer produces the final bytes of a template file.
type Renderer interface {
	// Render reads the named template and substitutes vars. Binary files
	// are returned unchanged.
	Render(name string, vars Vars) ([]byte, error)
}

type renderer struct {
	fsys fs.FS
}

// NewRenderer creates a Renderer backed by the given filesystem.
func NewRenderer(fsys fs.FS) Renderer {
	return &renderer{fsys: fsys}
}

func (r *renderer) Render(name string, vars Vars) ([]byte, error) {
	content, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if isBinary(content) {
		return content, nil
	}
	return Substitute(content, vars), nil
}
