package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-intake/internal/config"
	"github.com/goliatone/go-intake/internal/logging"
)

// app carries state shared by every subcommand once the root pre-run has
// resolved configuration.
type app struct {
	configPath string
	verbose    bool
	flags      overrides

	cfg    config.Config
	logger *zap.Logger
}

// overrides are persistent flags that win over file and environment values.
type overrides struct {
	source    string
	preset    string
	store     string
	storeDir  string
	dsn       string
	locale    string
	processor string
	currency  string
	theme     string
	variant   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:           "intake",
		Short:         "Walk, render and inspect multi-page intake forms",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "config file (default intake.toml when present)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVarP(&a.flags.source, "source", "s", "", "form config path or URL")
	pf.StringVar(&a.flags.preset, "preset", "", "preset overriding form copy (JSON or YAML)")
	pf.StringVar(&a.flags.store, "store", "", "answer store backend: memory, file, sqlite, postgres")
	pf.StringVar(&a.flags.storeDir, "store-dir", "", "directory for the file store")
	pf.StringVar(&a.flags.dsn, "dsn", "", "database connection string for sql stores")
	pf.StringVar(&a.flags.locale, "locale", "", "message locale (en, es)")
	pf.StringVar(&a.flags.processor, "processor", "", "payment processor: simulated, stripe")
	pf.StringVar(&a.flags.currency, "currency", "", "payment currency")
	pf.StringVar(&a.flags.theme, "theme", "", "HTML theme name")
	pf.StringVar(&a.flags.variant, "variant", "", "HTML theme variant")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level")
	pf.StringVar(&a.flags.logFormat, "log-format", "", "log format: console, json")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newRenderCmd(a),
		newPagesCmd(a),
		newContractCmd(a),
		newAnswersCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath, config.WithOverrides(func(cfg *config.Config) {
		a.apply(cmd, cfg)
		if a.verbose {
			cfg.Log.Level = "debug"
		}
	}))
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("configuration resolved",
		zap.String("source", cfg.Form.Source),
		zap.String("store", cfg.Store.Backend),
		zap.String("locale", cfg.Locale),
	)
	return nil
}

// apply copies explicitly set flags over the loaded configuration.
func (a *app) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, dst *string, value string) {
		if cmd.Flags().Changed(name) {
			*dst = value
		}
	}
	set("source", &cfg.Form.Source, a.flags.source)
	set("preset", &cfg.Form.Preset, a.flags.preset)
	set("store", &cfg.Store.Backend, a.flags.store)
	set("store-dir", &cfg.Store.Dir, a.flags.storeDir)
	set("dsn", &cfg.Store.DSN, a.flags.dsn)
	set("locale", &cfg.Locale, a.flags.locale)
	set("processor", &cfg.Payment.Processor, a.flags.processor)
	set("currency", &cfg.Payment.Currency, a.flags.currency)
	set("theme", &cfg.Theme.Name, a.flags.theme)
	set("variant", &cfg.Theme.Variant, a.flags.variant)
	set("log-level", &cfg.Log.Level, a.flags.logLevel)
	set("log-format", &cfg.Log.Format, a.flags.logFormat)
}
