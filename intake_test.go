package intake

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/renderers/html"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func TestEmbeddedAssets(t *testing.T) {
	if _, err := fs.ReadFile(EmbeddedTemplates(), "templates/page.tpl"); err != nil {
		t.Fatalf("expected page template to be readable: %v", err)
	}
	css, err := fs.ReadFile(StylesheetFS(), html.StylesheetName)
	if err != nil {
		t.Fatalf("expected stylesheet to be readable: %v", err)
	}
	if !strings.Contains(string(css), ".intake-grid") {
		t.Fatalf("stylesheet missing grid rules")
	}
}

func TestOpenAndGenerate(t *testing.T) {
	ctx := context.Background()
	path := testsupport.WriteIntakeConfig(t, t.TempDir())

	e, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if e.State() != engine.StateReady {
		t.Fatalf("state = %s, err = %v", e.State(), e.Err())
	}
	if page, _ := e.Page(); page.Code != "about" {
		t.Fatalf("expected first page about, got %q", page.Code)
	}

	out, err := GenerateHTML(ctx, schema.SourceFromFile(path), "lifestyle", "")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(string(out), `data-page="lifestyle"`) {
		t.Fatalf("expected lifestyle page in output")
	}

	text, err := GenerateHTMLFromConfig(ctx, testsupport.IntakeConfig(t), "", "text")
	if err != nil {
		t.Fatalf("generate from config: %v", err)
	}
	if !strings.HasPrefix(string(text), "About you [1 / 6]") {
		t.Fatalf("unexpected text output:\n%s", text)
	}

	if _, err := Open(ctx, "  "); err == nil {
		t.Fatal("expected error for empty location")
	}
}
