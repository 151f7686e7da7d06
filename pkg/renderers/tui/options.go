package tui

import (
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/payment"
)

// Theme captures optional message prefixes. Keep minimal to avoid coupling
// the runner to ANSI specifics.
type Theme struct {
	PromptPrefix string
	InfoPrefix   string
	ErrorPrefix  string
}

// DefaultTheme marks notices and field errors.
var DefaultTheme = Theme{InfoPrefix: "", ErrorPrefix: "! "}

// Option configures the runner and the text renderer.
type Option func(*settings)

type settings struct {
	driver     PromptDriver
	theme      Theme
	locale     string
	translator locale.Translator
	processor  payment.Processor
	currency   string
	logger     *zap.Logger
	stat       func(string) (fs.FileInfo, error)
}

func defaultSettings() settings {
	return settings{
		theme:    DefaultTheme,
		currency: payment.DefaultCurrency,
		logger:   zap.NewNop(),
		stat:     os.Stat,
	}
}

// WithPromptDriver overrides the prompt driver.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *settings) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithTheme applies message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *settings) {
		s.theme = theme
	}
}

// WithLocale selects the message language.
func WithLocale(tag string) Option {
	return func(s *settings) {
		s.locale = tag
	}
}

// WithTranslator replaces the embedded message catalogue.
func WithTranslator(t locale.Translator) Option {
	return func(s *settings) {
		s.translator = t
	}
}

// WithProcessor enables charging on payment pages. Without a processor the
// runner records the plan selection only.
func WithProcessor(p payment.Processor) Option {
	return func(s *settings) {
		s.processor = p
	}
}

// WithCurrency sets the charge currency.
func WithCurrency(currency string) Option {
	return func(s *settings) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStat replaces os.Stat when resolving document paths.
func WithStat(stat func(string) (fs.FileInfo, error)) Option {
	return func(s *settings) {
		if stat != nil {
			s.stat = stat
		}
	}
}
