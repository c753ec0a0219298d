package feature

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

const (
	vscodeDir        = ".vscode"
	vscodeExtensions = "extensions.json"
	vscodeSettings   = "settings.json"
	formatterSetting = "editor.defaultFormatter"
)

func readJSONObject(p string) (*manifest.Object, error) {
	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return manifest.NewObject(), nil
	}
	if err != nil {
		return nil, err
	}
	obj, err := manifest.ParseObject(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", p, err)
	}
	return obj, nil
}

func writeJSONObject(p string, obj *manifest.Object) error {
	data, err := obj.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return manifest.WriteFileAtomic(p, data)
}

// addExtensionRecommendations adds ids to .vscode/extensions.json and
// returns those added.
func addExtensionRecommendations(dir string, ids ...string) ([]string, error) {
	p := filepath.Join(dir, vscodeDir, vscodeExtensions)
	obj, err := readJSONObject(p)
	if err != nil {
		return nil, err
	}
	var current []any
	if v, ok := obj.Get("recommendations"); ok {
		current, _ = v.([]any)
	}
	var added []string
	for _, id := range ids {
		if slices.Contains(current, any(id)) {
			continue
		}
		current = append(current, id)
		added = append(added, id)
	}
	if len(added) == 0 {
		return nil, nil
	}
	obj.Set("recommendations", current)
	return added, writeJSONObject(p, obj)
}

// setLanguageFormatter makes formatter the default for each language in
// .vscode/settings.json and disables Prettier. It returns the languages
// configured and whether Prettier was switched off.
func setLanguageFormatter(dir string, languages []string, formatter string) ([]string, bool, error) {
	p := filepath.Join(dir, vscodeDir, vscodeSettings)
	obj, err := readJSONObject(p)
	if err != nil {
		return nil, false, err
	}

	disabledPrettier := false
	if v, ok := obj.Get("prettier.enable"); !ok || v != false {
		obj.Set("prettier.enable", false)
		disabledPrettier = true
	}

	var added []string
	for _, lang := range languages {
		key := "[" + lang + "]"
		block, ok := obj.GetObject(key)
		if !ok {
			block = manifest.NewObject()
			obj.Set(key, block)
		}
		if v, _ := block.GetString(formatterSetting); v == formatter {
			continue
		}
		block.Set(formatterSetting, formatter)
		added = append(added, lang)
	}

	if len(added) == 0 && !disabledPrettier {
		return nil, false, nil
	}
	return added, disabledPrettier, writeJSONObject(p, obj)
}

// ensureSettings sets each key of settings that is absent from
// .vscode/settings.json and returns the keys written.
func ensureSettings(dir string, settings ...manifest.Entry[any]) ([]string, error) {
	p := filepath.Join(dir, vscodeDir, vscodeSettings)
	obj, err := readJSONObject(p)
	if err != nil {
		return nil, err
	}
	var added []string
	for _, s := range settings {
		if obj.Has(s.Key) {
			continue
		}
		obj.Set(s.Key, s.Value)
		added = append(added, s.Key)
	}
	if len(added) == 0 {
		return nil, nil
	}
	return added, writeJSONObject(p, obj)
}
