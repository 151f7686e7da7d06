package orchestrator

import (
	"context"
	"errors"
	"fmt"

	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	internalLoader "github.com/goliatone/go-intake/internal/loader"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/renderers/html"
	"github.com/goliatone/go-intake/pkg/renderers/tui"
	"github.com/goliatone/go-intake/pkg/schema"
)

const defaultRendererName = html.Name

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects a custom config loader.
func WithLoader(loader schema.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformer registers a Transformer that can rewrite the config after
// loading and before the engine sees it.
func WithTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithThemeSelector resolves request themes. The built-in static selector is
// used when omitted.
func WithThemeSelector(selector render.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
	}
}

// WithDefaultTheme sets the theme and variant used when a request names none.
func WithDefaultTheme(name, variant string) Option {
	return func(o *Orchestrator) {
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithEngineOptions forwards options to every engine the orchestrator opens.
func WithEngineOptions(options ...engine.Option) Option {
	return func(o *Orchestrator) {
		o.engineOptions = append(o.engineOptions, options...)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates loading a config, opening an engine on it and
// rendering views. It applies sensible defaults (html renderer, embedded
// templates, built-in theme) while remaining open to dependency injection.
type Orchestrator struct {
	loader          schema.Loader
	registry        *render.Registry
	defaultRenderer string
	transformer     Transformer
	themeSelector   render.ThemeSelector
	defaultTheme    string
	defaultVariant  string
	engineOptions   []engine.Option
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		logger:          zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes one session view.
type Request struct {
	// Source identifies where the config lives. Optional when Config is
	// supplied.
	Source schema.Source

	// Config bypasses the loader when the caller already holds a config.
	Config *schema.Config

	// Page is the requested page code; empty opens the first page.
	Page string

	// Renderer names the renderer to use. If empty, the orchestrator falls
	// back to the configured default renderer.
	Renderer string

	// ThemeName and ThemeVariant select a theme when RenderOptions.Theme is
	// not already set.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries per-request presentation settings.
	RenderOptions render.RenderOptions

	// EngineOptions apply to this request's engine after the orchestrator's
	// own, for example a per-session answer store.
	EngineOptions []engine.Option
}

// Registry exposes the renderer registry.
func (o *Orchestrator) Registry() *render.Registry {
	return o.registry
}

// Open loads the config and returns an engine positioned on req.Page. Load
// and transform failures do not fail Open: the engine is returned in the
// not-found state with Err set, which renderers present as a load failure.
func (o *Orchestrator) Open(ctx context.Context, req Request) (*engine.Engine, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Config == nil && req.Source == nil {
		return nil, errors.New("orchestrator: source or config is required")
	}

	options := append([]engine.Option{engine.WithLogger(o.logger)}, o.engineOptions...)
	e := engine.New(append(options, req.EngineOptions...)...)
	cfg, err := o.resolveConfig(ctx, req)
	if err != nil {
		o.logger.Warn("config unavailable", zap.Error(err))
		e.Fail(err)
		return e, nil
	}
	e.Init(ctx, cfg, req.Page)
	return e, nil
}

// Render draws the engine's current view with the requested renderer.
func (o *Orchestrator) Render(ctx context.Context, e *engine.Engine, req Request) ([]byte, error) {
	if err := o.initialiseErr; err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.New("orchestrator: engine is nil")
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := o.resolveTheme(req)
		if err != nil {
			return nil, err
		}
		opts.Theme = cfg
	}

	output, err := renderer.Render(ctx, e.View(), opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Generate opens an engine for req and renders its first view.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	e, err := o.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	return o.Render(ctx, e, req)
}

func (o *Orchestrator) resolveConfig(ctx context.Context, req Request) (*schema.Config, error) {
	var cfg *schema.Config
	if req.Config != nil {
		sorted := req.Config.Sorted()
		cfg = &sorted
	} else {
		loaded, err := o.loader.Load(ctx, req.Source)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: load config: %w", err)
		}
		cfg = loaded
	}

	if o.transformer != nil {
		if err := o.transformer.Transform(ctx, cfg); err != nil {
			return nil, fmt.Errorf("orchestrator: transform config: %w", err)
		}
		resorted := cfg.Sorted()
		cfg = &resorted
	}
	if len(cfg.Pages) == 0 {
		return nil, schema.ErrNoPages
	}
	return cfg, nil
}

func (o *Orchestrator) resolveTheme(req Request) (*theme.RendererConfig, error) {
	name, variant := req.ThemeName, req.ThemeVariant
	if name == "" {
		name = o.defaultTheme
	}
	if variant == "" {
		variant = o.defaultVariant
	}
	cfg, err := render.ResolveTheme(o.themeSelector, name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: resolve theme: %w", err)
	}
	return cfg, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	renderer, err := o.registry.Resolve("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = internalLoader.New(schema.NewLoaderOptions())
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		renderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(tui.New())
	}
	if o.themeSelector == nil {
		o.themeSelector = render.NewStaticSelector()
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
