package template

import (
	"strconv"
	"testing"
	"time"
)

func TestNewVars_Defaults(t *testing.T) {
	v := NewVars()

	if v[VarYear] != strconv.Itoa(time.Now().Year()) {
		t.Errorf("YEAR = %q, want current year", v[VarYear])
	}
	if v[VarPackageMgr] != "pnpm" {
		t.Errorf("PACKAGE_MANAGER = %q, want %q", v[VarPackageMgr], "pnpm")
	}
	if _, ok := v[VarPackageName]; ok {
		t.Error("PACKAGE_NAME set without WithPackage")
	}
}

func TestNewVars_WithOptions(t *testing.T) {
	tests := []struct {
		name    string
		opt     VarsOption
		checkFn func(t *testing.T, v Vars)
	}{
		{
			name: "WithPackage scoped",
			opt:  WithPackage("@modu", "tools"),
			checkFn: func(t *testing.T, v Vars) {
				if v[VarPackageName] != "@modu/tools" {
					t.Errorf("PACKAGE_NAME = %q, want %q", v[VarPackageName], "@modu/tools")
				}
				if v[VarScope] != "@modu" || v[VarName] != "tools" {
					t.Errorf("SCOPE/NAME = %q/%q", v[VarScope], v[VarName])
				}
			},
		},
		{
			name: "WithPackage unscoped",
			opt:  WithPackage("", "tools"),
			checkFn: func(t *testing.T, v Vars) {
				if v[VarPackageName] != "tools" {
					t.Errorf("PACKAGE_NAME = %q, want %q", v[VarPackageName], "tools")
				}
			},
		},
		{
			name: "WithAuthor",
			opt:  WithAuthor("Ada", "ada@example.com", "https://ada.dev"),
			checkFn: func(t *testing.T, v Vars) {
				if v[VarAuthorName] != "Ada" || v[VarAuthorEmail] != "ada@example.com" || v[VarAuthorURL] != "https://ada.dev" {
					t.Errorf("author vars = %v", v)
				}
			},
		},
		{
			name: "WithYear",
			opt:  WithYear(2001),
			checkFn: func(t *testing.T, v Vars) {
				if v[VarYear] != "2001" {
					t.Errorf("YEAR = %q, want %q", v[VarYear], "2001")
				}
			},
		},
		{
			name: "WithPackageManager empty keeps default",
			opt:  WithPackageManager(""),
			checkFn: func(t *testing.T, v Vars) {
				if v[VarPackageMgr] != "pnpm" {
					t.Errorf("PACKAGE_MANAGER = %q", v[VarPackageMgr])
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.checkFn(t, NewVars(tt.opt))
		})
	}
}
