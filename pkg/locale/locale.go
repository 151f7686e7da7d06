// Package locale holds the user-facing message catalogue shared by the
// validation rules and the renderers.
package locale

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Message ids.
const (
	ValidationRequired  = "validation_required"
	ValidationPattern   = "validation_pattern"
	ValidationMinNumber = "validation_min_number"
	ValidationMaxNumber = "validation_max_number"
	ValidationMinDate   = "validation_min_date"
	ValidationMaxDate   = "validation_max_date"
	ValidationEmail     = "validation_email"
	ValidationMinLength = "validation_min_length"
	ValidationMaxLength = "validation_max_length"
	ValidationFileType  = "validation_file_type"
	ValidationFileSize  = "validation_file_size"

	FilesTooMany     = "files_too_many"
	FilesTooLarge    = "files_too_large"
	FilesMaxSizeHint = "files_max_size_hint"

	FieldUnsupported       = "field_unsupported"
	FieldSelectPlaceholder = "field_select_placeholder"

	NavNext   = "nav_next"
	NavBack   = "nav_back"
	NavSubmit = "nav_submit"

	PageNotFoundTitle  = "page_not_found_title"
	PageNotFoundBody   = "page_not_found_body"
	PageNotFoundAction = "page_not_found_action"

	PaymentProcessing = "payment_processing"
	PaymentSuccess    = "payment_success"
	PaymentFailed     = "payment_failed"
	PaymentRequired   = "payment_required"
	PaymentPay        = "payment_pay"

	FormSubmitted = "form_submitted"
)

//go:embed messages/*.toml
var builtin embed.FS

// Translator resolves a message id for a locale. Data feeds the message
// template; a "Count" entry selects plural forms.
type Translator interface {
	Translate(locale, id string, data map[string]any) (string, error)
}

// Catalog is a go-i18n bundle with English as the fallback language.
type Catalog struct {
	bundle *goi18n.Bundle

	mu         sync.Mutex
	localizers map[string]*goi18n.Localizer
}

var _ Translator = (*Catalog)(nil)

// Option configures a Catalog.
type Option func(*catalogConfig)

type catalogConfig struct {
	files []fs.FS
	paths []string
}

// WithMessageFS loads every active.*.toml file found at the root of fsys on
// top of the built-in messages.
func WithMessageFS(fsys fs.FS) Option {
	return func(c *catalogConfig) {
		if fsys != nil {
			c.files = append(c.files, fsys)
		}
	}
}

// WithMessageFile loads an extra message file from disk.
func WithMessageFile(path string) Option {
	return func(c *catalogConfig) {
		if strings.TrimSpace(path) != "" {
			c.paths = append(c.paths, path)
		}
	}
}

// New builds a catalogue from the embedded messages plus any overrides.
func New(options ...Option) (*Catalog, error) {
	var cfg catalogConfig
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	sub, err := fs.Sub(builtin, "messages")
	if err != nil {
		return nil, err
	}
	if err := loadFS(bundle, sub); err != nil {
		return nil, err
	}
	for _, fsys := range cfg.files {
		if err := loadFS(bundle, fsys); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.paths {
		if _, err := bundle.LoadMessageFile(p); err != nil {
			return nil, fmt.Errorf("locale: load %s: %w", p, err)
		}
	}

	return &Catalog{
		bundle:     bundle,
		localizers: make(map[string]*goi18n.Localizer),
	}, nil
}

func loadFS(bundle *goi18n.Bundle, fsys fs.FS) error {
	matches, err := fs.Glob(fsys, "active.*.toml")
	if err != nil {
		return err
	}
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("locale: read %s: %w", name, err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return fmt.Errorf("locale: parse %s: %w", name, err)
		}
	}
	return nil
}

// Translate localizes id. Unknown locales fall back to English.
func (c *Catalog) Translate(locale, id string, data map[string]any) (string, error) {
	cfg := &goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	}
	if count, ok := data["Count"]; ok {
		cfg.PluralCount = count
	}
	return c.localizer(locale).Localize(cfg)
}

// Languages lists the loaded language tags.
func (c *Catalog) Languages() []string {
	tags := c.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = tag.String()
	}
	return out
}

func (c *Catalog) localizer(locale string) *goi18n.Localizer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if l, ok := c.localizers[locale]; ok {
		return l
	}
	l := goi18n.NewLocalizer(c.bundle, locale)
	c.localizers[locale] = l
	return l
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the shared catalogue built from the embedded messages.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New()
		if err != nil {
			panic(fmt.Sprintf("locale: embedded messages: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Text translates id and falls back to the id itself when the lookup fails.
func Text(t Translator, locale, id string, data map[string]any) string {
	if t == nil {
		t = Default()
	}
	msg, err := t.Translate(locale, id, data)
	if err != nil || msg == "" {
		return id
	}
	return msg
}
