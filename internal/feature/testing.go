package feature

import (
	"context"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

const (
	TestingID = "testing"

	vitestPackage    = "vitest"
	vitestConfigFile = "vitest.config.ts"
	vitestExtension  = "vitest.explorer"
)

var testingScripts = []manifest.Entry[string]{
	{Key: "test", Value: "vitest"},
	{Key: "test.run", Value: "vitest run"},
	{Key: "test.coverage", Value: "vitest run --coverage"},
}

// Testing adds vitest with a config file and test scripts.
func Testing() Feature {
	return Feature{
		ID:         TestingID,
		Label:      "vitest testing",
		Hint:       "unit tests with coverage",
		Extensions: []string{vitestExtension},
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return manifest.IsDeclared(fc.Dir, vitestPackage), nil
		},
		Apply: applyTesting,
	}
}

func applyTesting(ctx context.Context, fc *Context) (Result, error) {
	var res Result

	installed, err := ensureDevDependencies(ctx, fc, vitestPackage)
	res.add(installed...)
	if err != nil {
		return res, err
	}

	wrote, err := ensureTemplate(ctx, fc, featureTemplate(TestingID, vitestConfigFile), vitestConfigFile)
	if err != nil {
		return res, err
	}
	if wrote {
		res.add(vitestConfigFile)
	}

	if exists(fc.path("src/index.ts")) {
		wrote, err := ensureTemplate(ctx, fc, featureTemplate(TestingID, "src/index.test.ts"), "src/index.test.ts")
		if err != nil {
			return res, err
		}
		if wrote {
			res.add("src/index.test.ts")
		}
	}

	changed, err := updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, added := manifest.InsertScripts(m, manifest.TitledSection(lintingGroupTitle, "TESTING", testingScripts))
		return next, len(added) > 0
	})
	if err != nil {
		return res, err
	}
	if changed {
		res.add("test scripts")
	}

	exts, err := addExtensionRecommendations(fc.Dir, vitestExtension)
	if err != nil {
		return res, err
	}
	if len(exts) > 0 {
		res.add(".vscode/extensions.json")
	}

	return res.finish("vitest already configured. No changes made."), nil
}
