package locale

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestDefault_English(t *testing.T) {
	got := Text(Default(), "en", ValidationMinNumber, map[string]any{"Min": "10"})
	if got != "Minimum value is 10" {
		t.Fatalf("got %q", got)
	}
}

func TestDefault_SpanishAndFallback(t *testing.T) {
	c := Default()
	if got := Text(c, "es", ValidationRequired, nil); got != "Este campo es obligatorio" {
		t.Fatalf("es required = %q", got)
	}
	if got := Text(c, "fr-CA", ValidationRequired, nil); got != "This field is required" {
		t.Fatalf("unknown locale should fall back to English, got %q", got)
	}
}

func TestTranslate_Plural(t *testing.T) {
	c := Default()
	one := Text(c, "en", FilesTooMany, map[string]any{"Max": 1, "Count": 1})
	many := Text(c, "en", FilesTooMany, map[string]any{"Max": 3, "Count": 3})
	if diff := cmp.Diff([]string{"Maximum 1 file allowed", "Maximum 3 files allowed"}, []string{one, many}); diff != "" {
		t.Fatalf("plural mismatch (-want +got):\n%s", diff)
	}
}

func TestText_UnknownIDFallsBackToID(t *testing.T) {
	if got := Text(Default(), "en", "does_not_exist", nil); got != "does_not_exist" {
		t.Fatalf("got %q", got)
	}
}

func TestNew_Overrides(t *testing.T) {
	overrides := fstest.MapFS{
		"active.de.toml": &fstest.MapFile{Data: []byte("[nav_next]\nother = \"Weiter\"\n")},
	}
	path := filepath.Join(t.TempDir(), "active.en.toml")
	if err := os.WriteFile(path, []byte("[nav_submit]\nother = \"Send it\"\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	c, err := New(WithMessageFS(overrides), WithMessageFile(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := Text(c, "de", NavNext, nil); got != "Weiter" {
		t.Fatalf("de next = %q", got)
	}
	if got := Text(c, "en", NavSubmit, nil); got != "Send it" {
		t.Fatalf("override submit = %q", got)
	}
	if got := Text(c, "en", NavBack, nil); got != "Back" {
		t.Fatalf("builtin message lost: %q", got)
	}
}
