package template

import (
	"strconv"
	"time"
)

// Placeholder names understood by the bundled templates.
const (
	VarScope       = "SCOPE"
	VarName        = "NAME"
	VarPackageName = "PACKAGE_NAME"
	VarYear        = "YEAR"
	VarDescription = "DESCRIPTION"
	VarAuthorName  = "AUTHOR_NAME"
	VarAuthorEmail = "AUTHOR_EMAIL"
	VarAuthorURL   = "AUTHOR_URL"
	VarNodeVersion = "NODE_VERSION"
	VarPackageMgr  = "PACKAGE_MANAGER"
)

const (
	defaultNode   = "22"
	defaultPkgMgr = "pnpm"
)

// VarsOption configures the placeholder values of a template run.
type VarsOption func(Vars)

// NewVars returns placeholder values with defaults, then applies opts.
func NewVars(opts ...VarsOption) Vars {
	v := Vars{
		VarYear:        strconv.Itoa(time.Now().Year()),
		VarNodeVersion: defaultNode,
		VarPackageMgr:  defaultPkgMgr,
		VarDescription: "",
		VarAuthorName:  "",
		VarAuthorEmail: "",
		VarAuthorURL:   "",
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// WithPackage sets the scope, bare name and full package name. An empty
// scope yields an unscoped package name.
func WithPackage(scope, name string) VarsOption {
	return func(v Vars) {
		v[VarScope] = scope
		v[VarName] = name
		if scope == "" {
			v[VarPackageName] = name
			return
		}
		v[VarPackageName] = scope + "/" + name
	}
}

// WithDescription sets the package description.
func WithDescription(desc string) VarsOption {
	return func(v Vars) {
		v[VarDescription] = desc
	}
}

// WithAuthor sets the author fields.
func WithAuthor(name, email, url string) VarsOption {
	return func(v Vars) {
		v[VarAuthorName] = name
		v[VarAuthorEmail] = email
		v[VarAuthorURL] = url
	}
}

// WithYear overrides the copyright year.
func WithYear(year int) VarsOption {
	return func(v Vars) {
		v[VarYear] = strconv.Itoa(year)
	}
}

// WithPackageManager sets the package manager command name.
func WithPackageManager(name string) VarsOption {
	return func(v Vars) {
		if name != "" {
			v[VarPackageMgr] = name
		}
	}
}
