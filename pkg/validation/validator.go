// Package validation turns a question definition and its current answer into
// at most one error message.
package validation

import (
	"sync"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Validator runs the generic rules (required, then pattern) followed by the
// rules registered for the question's kind. The first rule that fires wins.
type Validator struct {
	mu         sync.RWMutex
	kindRules  map[schema.Kind][]Rule
	translator locale.Translator
	locale     string
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator overrides the message catalogue.
func WithTranslator(t locale.Translator) Option {
	return func(v *Validator) {
		if t != nil {
			v.translator = t
		}
	}
}

// WithLocale selects the language for default messages.
func WithLocale(tag string) Option {
	return func(v *Validator) {
		v.locale = tag
	}
}

// WithKindRules replaces the rules registered for kind.
func WithKindRules(kind schema.Kind, rules ...Rule) Option {
	return func(v *Validator) {
		v.kindRules[kind] = append([]Rule(nil), rules...)
	}
}

// New returns a Validator preloaded with the built-in kind rules.
func New(options ...Option) *Validator {
	v := &Validator{
		kindRules:  DefaultKindRules(),
		translator: locale.Default(),
		locale:     "en",
	}
	for _, opt := range options {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// WithStrictRules adds the optional checks: email shape, text length from
// min/max and document type/size rechecks.
func WithStrictRules() Option {
	return func(v *Validator) {
		for kind, rules := range StrictKindRules() {
			v.kindRules[kind] = append(v.kindRules[kind], rules...)
		}
	}
}

// DefaultKindRules returns the built-in kind → rules table.
func DefaultKindRules() map[schema.Kind][]Rule {
	return map[schema.Kind][]Rule{
		schema.KindNumber: {NumberRange},
		schema.KindDate:   {DateRange},
	}
}

// StrictKindRules returns the opt-in kind → rules table.
func StrictKindRules() map[schema.Kind][]Rule {
	return map[schema.Kind][]Rule{
		schema.KindEmail:    {Email},
		schema.KindText:     {Length},
		schema.KindTextarea: {Length},
		schema.KindDocument: {Documents},
	}
}

// Register appends rules for kind, so new kinds are added without touching
// the dispatch.
func (v *Validator) Register(kind schema.Kind, rules ...Rule) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.kindRules[kind] = append(v.kindRules[kind], rules...)
}

// Validate returns the message of the first failing rule.
func (v *Validator) Validate(q schema.Question, value answers.Value) (string, bool) {
	if msg, ok := Required(q, value, v); ok {
		return msg, true
	}
	if msg, ok := Pattern(q, value, v); ok {
		return msg, true
	}

	v.mu.RLock()
	rules := v.kindRules[q.Type]
	v.mu.RUnlock()

	for _, rule := range rules {
		if msg, ok := rule(q, value, v); ok {
			return msg, true
		}
	}
	return "", false
}

// Message implements Messages using the configured catalogue.
func (v *Validator) Message(id string, data map[string]any) string {
	return locale.Text(v.translator, v.locale, id, data)
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Validate checks value against q using the default English validator.
func Validate(q schema.Question, value answers.Value) (string, bool) {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator.Validate(q, value)
}
