// Package testsupport holds fixtures shared by package tests.
package testsupport

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/schema"
)

//go:embed testdata/intake.json
var intakeJSON []byte

// IntakeJSON returns the raw sample configuration. Pages are declared out of
// order: about, health, lifestyle, documents, checkout, review is the walk.
func IntakeJSON() []byte {
	return append([]byte(nil), intakeJSON...)
}

// IntakeConfig decodes the sample configuration.
func IntakeConfig(t testing.TB) *schema.Config {
	t.Helper()
	cfg, err := schema.Decode(intakeJSON, "testdata/intake.json")
	if err != nil {
		t.Fatalf("decode sample config: %v", err)
	}
	return cfg
}

// WriteIntakeConfig writes the sample configuration into dir and returns its path.
func WriteIntakeConfig(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "intake.json")
	if err := os.WriteFile(path, intakeJSON, 0o644); err != nil {
		t.Fatalf("write sample config: %v", err)
	}
	return path
}

// Config builds a config from pages, sorted as the loader would.
func Config(pages ...schema.Page) *schema.Config {
	cfg := schema.Config{Pages: pages}.Sorted()
	return &cfg
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. It
// reports whether the golden was written so the test can stop early.
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}
