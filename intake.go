// Package intake is the convenience entry point for embedding intake forms:
// it re-exports the loader, orchestrator and renderer constructors so callers
// can render a form without wiring the packages themselves.
package intake

import (
	"context"

	internalLoader "github.com/goliatone/go-intake/internal/loader"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
)

// RenderOptions aliases render.RenderOptions.
type RenderOptions = render.RenderOptions

// Config aliases the form configuration document.
type Config = schema.Config

// NewLoader constructs a config loader using the internal implementation
// while keeping the concrete type hidden from consumers.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return internalLoader.New(schema.NewLoaderOptions(options...))
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Open loads the form at location (a path or http(s) URL) and returns an
// engine on its first page.
func Open(ctx context.Context, location string, options ...orchestrator.Option) (*engine.Engine, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).Open(ctx, orchestrator.Request{Source: src})
}

// GenerateHTML loads the config from source and renders page with the named
// renderer. An empty page renders the first one; an empty renderer name
// selects HTML.
func GenerateHTML(ctx context.Context, source schema.Source, page, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:   source,
		Page:     page,
		Renderer: rendererName,
	})
}

// GenerateHTMLFromConfig renders a config the caller already holds,
// bypassing the loader.
func GenerateHTMLFromConfig(ctx context.Context, cfg *schema.Config, page, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Config:   cfg,
		Page:     page,
		Renderer: rendererName,
	})
}

// WithThemeSelector passes a theme selector through to the orchestrator so
// theme and variant choices resolve ahead of rendering.
func WithThemeSelector(selector render.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}
