package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/validation"
)

// openStore builds the configured answer store. The returned closer is never
// nil.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (answers.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.StoreMemory:
		return answers.NewMemoryStore(), nopCloser{}, nil
	case config.StoreFile:
		store, err := answers.NewFileStore(cfg.Dir, cfg.Key)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	case config.StoreSQLite, config.StorePostgres:
		dialect := answers.DialectSQLite
		if cfg.Backend == config.StorePostgres {
			dialect = answers.DialectPostgres
		}
		store, err := answers.OpenSQLStore(ctx,
			answers.WithDSN(cfg.DSN),
			answers.WithDialect(dialect),
			answers.WithSlot(cfg.Key),
			answers.WithSQLLogger(logger),
		)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// session bundles what a command needs to drive one form.
type session struct {
	orch   *orchestrator.Orchestrator
	engine *engine.Engine
	store  answers.Store
	closer io.Closer
}

func (s *session) Close() error {
	if s == nil || s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// openSession opens the store and an engine positioned on page. Extra engine
// options are appended after the configured ones.
func (a *app) openSession(ctx context.Context, page string, extra ...engine.Option) (*session, error) {
	src, err := schema.ParseSource(a.cfg.Form.Source)
	if err != nil {
		return nil, err
	}
	store, closer, err := openStore(ctx, a.cfg.Store, a.logger)
	if err != nil {
		return nil, fmt.Errorf("open answer store: %w", err)
	}

	orch, err := a.orchestrator(store, extra...)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	e, err := orch.Open(ctx, orchestrator.Request{Source: src, Page: page})
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return &session{orch: orch, engine: e, store: store, closer: closer}, nil
}

func (a *app) orchestrator(store answers.Store, extra ...engine.Option) (*orchestrator.Orchestrator, error) {
	engineOptions := []engine.Option{
		engine.WithStore(store),
		engine.WithAutoAdvance(a.cfg.Form.AutoAdvance),
		engine.WithRequirePayment(a.cfg.Form.RequirePayment),
		engine.WithValidator(validation.New(validation.WithLocale(a.cfg.Locale))),
	}
	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithDefaultTheme(a.cfg.Theme.Name, a.cfg.Theme.Variant),
		orchestrator.WithEngineOptions(append(engineOptions, extra...)...),
	}
	preset, err := a.preset()
	if err != nil {
		return nil, err
	}
	if preset != nil {
		options = append(options, orchestrator.WithTransformer(preset))
	}
	return orchestrator.New(options...), nil
}

// preset returns the configured copy override, or nil when none is set.
func (a *app) preset() (orchestrator.Transformer, error) {
	if a.cfg.Form.Preset == "" {
		return nil, nil
	}
	data, err := os.ReadFile(a.cfg.Form.Preset)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return orchestrator.NewPresetTransformer(data)
}
