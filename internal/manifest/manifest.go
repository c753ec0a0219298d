// Package manifest reads, patches and writes package.json files while
// keeping their key order intact.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

// Dependency section keys.
const (
	SectionDependencies    = "dependencies"
	SectionDevDependencies = "devDependencies"
)

// Manifest is a parsed package.json. Patch functions never modify their
// input; they return a new Manifest.
type Manifest struct {
	root *Object
}

// New wraps an ordered object as a manifest.
func New(root *Object) *Manifest {
	if root == nil {
		root = NewObject()
	}
	return &Manifest{root: root}
}

// Parse decodes package.json content.
func Parse(data []byte) (*Manifest, error) {
	root, err := ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return &Manifest{root: root}, nil
}

// Path returns the manifest path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Read loads dir/package.json.
func Read(dir string) (*Manifest, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Write stores m as dir/package.json. The file is replaced atomically.
func Write(dir string, m *Manifest) error {
	data, err := m.Bytes()
	if err != nil {
		return err
	}
	return WriteFileAtomic(Path(dir), data)
}

// Update reads dir/package.json, applies patch and writes the result when
// patch reports a change.
func Update(dir string, patch func(*Manifest) (*Manifest, bool)) (bool, error) {
	m, err := Read(dir)
	if err != nil {
		return false, err
	}
	next, changed := patch(m)
	if !changed {
		return false, nil
	}
	if err := Write(dir, next); err != nil {
		return false, err
	}
	return true, nil
}

// Bytes encodes the manifest with two-space indentation and a trailing
// newline.
func (m *Manifest) Bytes() ([]byte, error) {
	return m.root.MarshalIndent()
}

// Root exposes the underlying ordered object. Callers must not modify it;
// use Clone first.
func (m *Manifest) Root() *Object {
	return m.root
}

// Clone returns a deep copy.
func (m *Manifest) Clone() *Manifest {
	return &Manifest{root: m.root.Clone()}
}

// Equal reports whether both manifests encode identically.
func (m *Manifest) Equal(other *Manifest) bool {
	a, errA := m.Bytes()
	b, errB := other.Bytes()
	return errA == nil && errB == nil && string(a) == string(b)
}

// Name returns the "name" field.
func (m *Manifest) Name() string {
	s, _ := m.root.GetString("name")
	return s
}

// Version returns the "version" field.
func (m *Manifest) Version() string {
	s, _ := m.root.GetString("version")
	return s
}

// Description returns the "description" field.
func (m *Manifest) Description() string {
	s, _ := m.root.GetString("description")
	return s
}

// Set returns a copy with a top-level field set.
func (m *Manifest) Set(key string, value any) *Manifest {
	next := m.Clone()
	next.root.Set(key, value)
	return next
}

// Scripts returns the "scripts" entries in order.
func (m *Manifest) Scripts() []Entry[string] {
	obj, ok := m.root.GetObject("scripts")
	if !ok {
		return nil
	}
	out := make([]Entry[string], 0, obj.Len())
	for k, v := range obj.All() {
		s, _ := v.(string)
		out = append(out, Entry[string]{Key: k, Value: s})
	}
	return out
}

// Script returns one script command.
func (m *Manifest) Script(key string) (string, bool) {
	obj, ok := m.root.GetObject("scripts")
	if !ok {
		return "", false
	}
	return obj.GetString(key)
}

// Dependencies returns the version specs declared in section.
func (m *Manifest) Dependencies(section string) map[string]string {
	obj, ok := m.root.GetObject(section)
	if !ok {
		return nil
	}
	out := make(map[string]string, obj.Len())
	for k, v := range obj.All() {
		s, _ := v.(string)
		out[k] = s
	}
	return out
}

// DependencyNames returns the names declared in section in document order.
func (m *Manifest) DependencyNames(section string) []string {
	obj, ok := m.root.GetObject(section)
	if !ok {
		return nil
	}
	return obj.Keys()
}

// HasDependency reports whether name is declared as a dependency or a
// dev dependency.
func (m *Manifest) HasDependency(name string) bool {
	for _, section := range []string{SectionDependencies, SectionDevDependencies} {
		if obj, ok := m.root.GetObject(section); ok && obj.Has(name) {
			return true
		}
	}
	return false
}

// Keywords returns the "keywords" array.
func (m *Manifest) Keywords() []string {
	v, ok := m.root.Get("keywords")
	if !ok {
		return nil
	}
	list, _ := stringList(v)
	return list
}

// LintStaged returns the commands configured for pattern.
func (m *Manifest) LintStaged(pattern string) ([]string, bool) {
	obj, ok := m.root.GetObject("lint-staged")
	if !ok {
		return nil, false
	}
	v, ok := obj.Get(pattern)
	if !ok {
		return nil, false
	}
	return stringList(v)
}

// SplitName separates a package name into scope and bare name.
// "@modu/tools" yields ("@modu", "tools"); unscoped names have an empty
// scope.
func SplitName(name string) (scope, bare string) {
	if strings.HasPrefix(name, "@") {
		if i := strings.IndexByte(name, '/'); i > 0 {
			return name[:i], name[i+1:]
		}
	}
	return "", name
}

// IsDeclared reports whether the package in dir declares name in either
// dependency section. A missing or unreadable manifest counts as not
// declared.
func IsDeclared(dir, name string) bool {
	m, err := Read(dir)
	if err != nil {
		return false
	}
	return m.HasDependency(name)
}
