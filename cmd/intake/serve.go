package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/contract"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/orchestrator"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/renderers/html"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/validation"
	"github.com/goliatone/go-intake/pkg/webform"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr  string
		grace time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context(), addr, grace)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8383", "HTTP listen address")
	cmd.Flags().DurationVar(&grace, "grace", 5*time.Second, "shutdown grace period")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string, grace time.Duration) error {
	src, err := schema.ParseSource(a.cfg.Form.Source)
	if err != nil {
		return err
	}
	processor, err := payment.NewProcessor(a.cfg.Payment.Processor, a.cfg.Payment.SecretKey)
	if err != nil {
		return err
	}

	options := []orchestrator.Option{
		orchestrator.WithLogger(a.logger),
		orchestrator.WithDefaultTheme(a.cfg.Theme.Name, a.cfg.Theme.Variant),
		orchestrator.WithEngineOptions(
			engine.WithAutoAdvance(a.cfg.Form.AutoAdvance),
			engine.WithRequirePayment(a.cfg.Form.RequirePayment),
			engine.WithValidator(validation.New(validation.WithLocale(a.cfg.Locale))),
		),
	}
	if transformer, err := a.preset(); err != nil {
		return err
	} else if transformer != nil {
		options = append(options, orchestrator.WithTransformer(transformer))
	}

	var (
		mu      sync.Mutex
		closers []io.Closer
	)
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range closers {
			_ = c.Close()
		}
	}()
	stores := func(ctx context.Context, session string) (answers.Store, error) {
		store, closer, err := openStore(ctx, sessionStore(a.cfg.Store, session), a.logger)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		closers = append(closers, closer)
		mu.Unlock()
		return store, nil
	}

	handler := webform.New(orchestrator.New(options...), src,
		webform.WithStoreFactory(stores),
		webform.WithSubmit(a.logSubmission),
		webform.WithProcessor(processor),
		webform.WithCurrency(a.cfg.Payment.Currency),
		webform.WithLocale(a.cfg.Locale),
		webform.WithLogger(a.logger),
	)

	mux := http.NewServeMux()
	mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("/", handler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	a.logger.Info("listening", zap.String("addr", addr), zap.String("source", a.cfg.Form.Source))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("shutdown", zap.Error(err))
	}
	return nil
}

// sessionStore scopes the configured store to one browser session.
func sessionStore(cfg config.StoreConfig, session string) config.StoreConfig {
	switch cfg.Backend {
	case config.StoreFile:
		cfg.Dir = filepath.Join(cfg.Dir, session)
	case config.StoreSQLite, config.StorePostgres:
		cfg.Key = cfg.Key + ":" + session
	}
	return cfg
}

func (a *app) logSubmission(ctx context.Context, session string, submitted answers.Answers) error {
	payload, err := contract.Payload(submitted)
	if err != nil {
		return err
	}
	a.logger.Info("form submitted", zap.String("session", session), zap.Any("payload", payload))
	return nil
}
