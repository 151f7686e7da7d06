package render

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-intake/pkg/locale"
)

// RenderOptions carry per-request presentation settings.
type RenderOptions struct {
	// Locale selects the message language; empty means the catalogue default.
	Locale string
	// Translator resolves UI strings. Nil uses the embedded catalogue.
	Translator locale.Translator
	// Theme supplies tokens and CSS variables; nil renders without a theme.
	Theme *theme.RendererConfig
	// Action is the form post target for HTML output.
	Action string
	// Notice is a one-off message shown above the page, for example a file
	// constraint violation reported by the host.
	Notice string
	// HiddenFields are emitted as hidden inputs in HTML output.
	HiddenFields map[string]string
}

// Text translates a UI message id.
func (o RenderOptions) Text(id string, data map[string]any) string {
	return locale.Text(o.Translator, o.Locale, id, data)
}

// TemplateFuncs returns helpers for template engines. translate(id) looks up
// a message in the options' locale.
func (o RenderOptions) TemplateFuncs() map[string]any {
	return map[string]any{
		"translate": func(id string) string {
			return o.Text(id, nil)
		},
		"current_locale": func() string {
			return o.Locale
		},
	}
}
