package scaffold

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/modu-ai/pkgkit/internal/feature"
)

// Package type ids.
const (
	TypeLibrary = "library"
	TypeCLI     = "cli"
	TypeConfig  = "config"
)

// DefaultType is preselected by the type prompt.
const DefaultType = TypeLibrary

// PackageType is a kind of package the create flow can produce. Types
// only differ in the defaults they merge into package.json, a template
// overlay and the features they preselect.
type PackageType struct {
	ID          string
	Description string
	Keywords    []string
	// Bin, when set, is the path of the executable entry; it is exposed
	// under the bare package name.
	Bin             string
	DefaultFeatures []string
}

// Label is the display name of the type.
func (t PackageType) Label() string {
	if t.ID == TypeCLI {
		return strings.ToUpper(t.ID)
	}
	return cases.Title(language.English).String(t.ID)
}

// Overlay is the template subtree deployed before the common package
// tree. Files it provides win over the common ones.
func (t PackageType) Overlay() string {
	return "types/" + t.ID
}

var packageTypes = []PackageType{
	{
		ID:              TypeLibrary,
		Description:     "A reusable TypeScript library",
		Keywords:        []string{"library"},
		DefaultFeatures: []string{feature.TestingID},
	},
	{
		ID:              TypeCLI,
		Description:     "A command-line tool",
		Keywords:        []string{"cli"},
		Bin:             "./dist/cli.mjs",
		DefaultFeatures: []string{feature.TestingID},
	},
	{
		ID:          TypeConfig,
		Description: "A shared configuration package",
		Keywords:    []string{"config", "shared-config"},
	},
}

// PackageTypes returns every package type in prompt order.
func PackageTypes() []PackageType {
	out := make([]PackageType, len(packageTypes))
	copy(out, packageTypes)
	return out
}

// LookupType returns the package type with id.
func LookupType(id string) (PackageType, error) {
	for _, t := range packageTypes {
		if t.ID == id {
			return t, nil
		}
	}
	ids := make([]string, len(packageTypes))
	for i, t := range packageTypes {
		ids[i] = t.ID
	}
	return PackageType{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPackageType, id, strings.Join(ids, ", "))
}
