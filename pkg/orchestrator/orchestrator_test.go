package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

type captureRenderer struct {
	view    engine.View
	options render.RenderOptions
}

func (c *captureRenderer) Name() string        { return "capture" }
func (c *captureRenderer) ContentType() string { return "text/plain" }
func (c *captureRenderer) Render(_ context.Context, view engine.View, opts render.RenderOptions) ([]byte, error) {
	c.view = view
	c.options = opts
	return []byte(view.Page.Code), nil
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, nil
}

func writeSource(t *testing.T) schema.Source {
	t.Helper()
	return schema.SourceFromFile(testsupport.WriteIntakeConfig(t, t.TempDir()))
}

func TestGenerate_DefaultRenderers(t *testing.T) {
	ctx := testsupport.Context()
	orch := New()
	source := writeSource(t)

	out, err := orch.Generate(ctx, Request{Source: source})
	if err != nil {
		t.Fatalf("generate html: %v", err)
	}
	if !strings.Contains(string(out), `data-page="about"`) || !strings.Contains(string(out), `data-theme="intake"`) {
		t.Fatalf("unexpected html output:\n%s", out)
	}

	out, err = orch.Generate(ctx, Request{Source: source, Page: "health", Renderer: "text"})
	if err != nil {
		t.Fatalf("generate text: %v", err)
	}
	if !strings.HasPrefix(string(out), "Health history [2 / 6]") {
		t.Fatalf("unexpected text output:\n%s", out)
	}

	if diff := testsupport.CompareGolden([]string{"html", "text"}, orch.Registry().List()); diff != "" {
		t.Fatalf("registry mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_Errors(t *testing.T) {
	ctx := testsupport.Context()
	orch := New()

	if _, err := orch.Generate(ctx, Request{}); err == nil {
		t.Fatalf("expected error without source or config")
	}
	if _, err := orch.Generate(ctx, Request{Config: testsupport.IntakeConfig(t), Renderer: "pdf"}); err == nil || !strings.Contains(err.Error(), `renderer "pdf"`) {
		t.Fatalf("expected unknown renderer error, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := orch.Generate(cancelled, Request{Config: testsupport.IntakeConfig(t)}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestOpen_LoadFailureRendersNotFound(t *testing.T) {
	ctx := testsupport.Context()
	orch := New()

	req := Request{Source: schema.SourceFromFile("/does/not/exist.json"), Renderer: "text"}
	e, err := orch.Open(ctx, req)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if e.State() != engine.StateNotFound || e.Err() == nil {
		t.Fatalf("expected failed load, got %s %v", e.State(), e.Err())
	}
	out, err := orch.Render(ctx, e, req)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "exist.json") {
		t.Fatalf("load error not shown:\n%s", out)
	}
}

func TestOpen_EngineOptionsAndPage(t *testing.T) {
	ctx := testsupport.Context()
	store := answers.NewMemoryStore()
	orch := New(WithEngineOptions(engine.WithStore(store), engine.WithAutoAdvance(false)))

	e, err := orch.Open(ctx, Request{Config: testsupport.IntakeConfig(t), Page: "lifestyle"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if outcome, err := e.Choose(ctx, "smokes", "No"); err != nil || outcome != engine.OutcomeNone {
		t.Fatalf("auto-advance should be disabled: %s %v", outcome, err)
	}
	if len(store.Raw()) == 0 {
		t.Fatalf("answers were not persisted through the injected store")
	}

	perRequest := answers.NewMemoryStore()
	e, err = orch.Open(ctx, Request{
		Config:        testsupport.IntakeConfig(t),
		Page:          "lifestyle",
		EngineOptions: []engine.Option{engine.WithStore(perRequest)},
	})
	if err != nil {
		t.Fatalf("open with request options: %v", err)
	}
	if got := e.Value("smokes").Text(); got != "" {
		t.Fatalf("request store should start empty, got %q", got)
	}
	if err := e.Set(ctx, "smokes", answers.Text("Yes")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(perRequest.Raw()) == 0 {
		t.Fatalf("request store should override the orchestrator store")
	}
}

func TestRender_ThemeSelection(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens:  map[string]string{"brand": "#123456"},
	}
	selector := &stubThemeSelector{selection: &theme.Selection{Theme: "acme", Variant: "custom-variant", Manifest: manifest}}

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector),
		WithDefaultTheme("fallback", "light"),
	)
	out, err := orch.Generate(testsupport.Context(), Request{
		Config:       testsupport.IntakeConfig(t),
		Page:         "documents",
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "documents" {
		t.Fatalf("unexpected output %q", out)
	}

	if len(selector.calls) != 1 || selector.calls[0] != (selectorCall{name: "custom-theme", variant: "custom-variant"}) {
		t.Fatalf("unexpected selector calls: %+v", selector.calls)
	}
	cfg := renderer.options.Theme
	if cfg == nil || cfg.Theme != "acme" || cfg.Variant != "custom-variant" {
		t.Fatalf("theme config not passed: %+v", cfg)
	}
	if cfg.CSSVars["--brand"] != "#123456" || cfg.AssetURL == nil {
		t.Fatalf("css vars not derived from tokens: %+v", cfg.CSSVars)
	}

	if _, err := orch.Generate(testsupport.Context(), Request{Config: testsupport.IntakeConfig(t)}); err != nil {
		t.Fatalf("generate with defaults: %v", err)
	}
	if selector.calls[1] != (selectorCall{name: "fallback", variant: "light"}) {
		t.Fatalf("default theme not used: %+v", selector.calls[1])
	}
}

func TestTransformers(t *testing.T) {
	ctx := testsupport.Context()
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	files := fstest.MapFS{"preset.yaml": {Data: []byte(`
pages:
  about: {title: "A little about you", columns: 1}
questions:
  epipen: {text: "EpiPen on hand?", required: false}
  first_name: {placeholder: "Ada"}
`)}}
	preset, err := NewPresetTransformerFromFS(files, "preset.yaml")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}

	orch := New(WithRegistry(registry), WithTransformer(preset))
	e, err := orch.Open(ctx, Request{Config: testsupport.IntakeConfig(t)})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	page, _ := e.Page()
	if page.Title != "A little about you" || page.Columns != 1 {
		t.Fatalf("page patch not applied: %+v", page)
	}
	epipen, ok := e.Config().Question("epipen")
	if !ok || epipen.Text != "EpiPen on hand?" || epipen.Required {
		t.Fatalf("follow-up patch not applied: %+v", epipen)
	}

	bad, err := NewPresetTransformer([]byte(`{"questions": {"nope": {"text": "x"}}}`))
	if err != nil {
		t.Fatalf("json preset: %v", err)
	}
	e, _ = New(WithRegistry(registry), WithTransformer(bad)).Open(ctx, Request{Config: testsupport.IntakeConfig(t)})
	if !errors.Is(e.Err(), ErrUnknownPatchTarget) {
		t.Fatalf("expected unknown target error, got %v", e.Err())
	}

	reorder := TransformerFunc(func(_ context.Context, cfg *schema.Config) error {
		cfg.Pages[len(cfg.Pages)-1].Order = -1
		return nil
	})
	e, _ = New(WithRegistry(registry), WithTransformer(reorder)).Open(ctx, Request{Config: testsupport.IntakeConfig(t)})
	if page, _ := e.Page(); page.Code != "review" {
		t.Fatalf("transformed order not applied, first page %q", page.Code)
	}

	if _, err := NewPresetTransformer([]byte("  ")); err == nil {
		t.Fatalf("expected empty preset error")
	}
}
