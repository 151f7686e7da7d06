// Package config assembles application settings from defaults, an optional
// TOML file, .env files and INTAKE_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultFile is read when no explicit path is given and it exists.
const DefaultFile = "intake.toml"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "INTAKE_"

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Log formats.
const (
	LogJSON    = "json"
	LogConsole = "console"
)

type (
	// Config is the full application configuration.
	Config struct {
		Form    FormConfig    `toml:"form"`
		Store   StoreConfig   `toml:"store"`
		Payment PaymentConfig `toml:"payment"`
		Log     LogConfig     `toml:"log"`
		Theme   ThemeConfig   `toml:"theme"`
		Locale  string        `toml:"locale"`
	}

	// FormConfig locates the form and tunes engine behaviour.
	FormConfig struct {
		Source         string `toml:"source"`
		Preset         string `toml:"preset"`
		AutoAdvance    bool   `toml:"auto_advance"`
		RequirePayment bool   `toml:"require_payment"`
	}

	// StoreConfig selects where answers persist.
	StoreConfig struct {
		Backend string `toml:"backend"`
		Dir     string `toml:"dir"`
		DSN     string `toml:"dsn"`
		Key     string `toml:"key"`
	}

	// PaymentConfig selects the payment processor.
	PaymentConfig struct {
		Processor string `toml:"processor"`
		SecretKey string `toml:"secret_key"`
		Currency  string `toml:"currency"`
	}

	// LogConfig tunes the zap logger.
	LogConfig struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	}

	// ThemeConfig picks the HTML theme.
	ThemeConfig struct {
		Name    string `toml:"name"`
		Variant string `toml:"variant"`
	}
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Form: FormConfig{
			Source:      "intake.json",
			AutoAdvance: true,
		},
		Store: StoreConfig{
			Backend: StoreFile,
			Dir:     ".intake",
			Key:     "intake_form_data",
		},
		Payment: PaymentConfig{
			Processor: "simulated",
			Currency:  "usd",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogConsole,
		},
		Theme:  ThemeConfig{Name: "intake"},
		Locale: "en",
	}
}

// LoadOption customises Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	envFiles  []string
	lookup    func(string) (string, bool)
	overrides []func(*Config)
}

// WithEnvFiles sets the .env files to read. Missing files are skipped.
func WithEnvFiles(paths ...string) LoadOption {
	return func(o *loadOptions) {
		o.envFiles = paths
	}
}

// WithLookup replaces os.LookupEnv.
func WithLookup(fn func(string) (string, bool)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.lookup = fn
		}
	}
}

// WithOverrides runs fn after the environment layer and before validation,
// typically to apply command line flags.
func WithOverrides(fn func(*Config)) LoadOption {
	return func(o *loadOptions) {
		if fn != nil {
			o.overrides = append(o.overrides, fn)
		}
	}
}

// Load builds the configuration. An empty path reads DefaultFile when it
// exists; an explicit path must exist.
func Load(path string, options ...LoadOption) (Config, error) {
	opts := loadOptions{envFiles: []string{".env"}, lookup: os.LookupEnv}
	for _, opt := range options {
		if opt != nil {
			opt(&opts)
		}
	}

	cfg := Default()
	if err := decodeFile(&cfg, path); err != nil {
		return Config{}, err
	}
	if err := loadEnvFiles(opts.envFiles); err != nil {
		return Config{}, err
	}
	if err := applyEnv(&cfg, opts.lookup); err != nil {
		return Config{}, err
	}
	for _, override := range opts.overrides {
		override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: %w", err)
	}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return fmt.Errorf("config: %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		// Existing variables win over .env entries.
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"FORM_SOURCE":        &cfg.Form.Source,
		"FORM_PRESET":        &cfg.Form.Preset,
		"STORE_BACKEND":      &cfg.Store.Backend,
		"STORE_DIR":          &cfg.Store.Dir,
		"STORE_DSN":          &cfg.Store.DSN,
		"STORE_KEY":          &cfg.Store.Key,
		"PAYMENT_PROCESSOR":  &cfg.Payment.Processor,
		"PAYMENT_SECRET_KEY": &cfg.Payment.SecretKey,
		"PAYMENT_CURRENCY":   &cfg.Payment.Currency,
		"LOG_LEVEL":          &cfg.Log.Level,
		"LOG_FORMAT":         &cfg.Log.Format,
		"THEME":              &cfg.Theme.Name,
		"THEME_VARIANT":      &cfg.Theme.Variant,
		"LOCALE":             &cfg.Locale,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}

	bools := map[string]*bool{
		"AUTO_ADVANCE":    &cfg.Form.AutoAdvance,
		"REQUIRE_PAYMENT": &cfg.Form.RequirePayment,
	}
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, name, err)
		}
		*dst = parsed
	}
	return nil
}

// Validate checks enumerated settings and required companions.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case StoreMemory:
	case StoreFile:
		if c.Store.Dir == "" {
			errs = append(errs, errors.New("store.dir is required for the file backend"))
		}
	case StoreSQLite, StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, fmt.Errorf("store.dsn is required for the %s backend", c.Store.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.Key == "" {
		errs = append(errs, errors.New("store.key is required"))
	}

	switch c.Payment.Processor {
	case "simulated":
	case "stripe":
		if c.Payment.SecretKey == "" {
			errs = append(errs, errors.New("payment.secret_key is required for stripe"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown payment processor %q", c.Payment.Processor))
	}
	if c.Payment.Currency == "" {
		errs = append(errs, errors.New("payment.currency is required"))
	}

	switch c.Log.Format {
	case LogJSON, LogConsole:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
