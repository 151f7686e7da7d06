// Package html renders intake sessions as server-side HTML documents using
// the embedded pongo2 templates.
package html

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/render/template"
	"github.com/goliatone/go-intake/pkg/render/template/pongo"
)

// Name is the registry key of this renderer.
const Name = "html"

const (
	pageTemplate     = "page"
	notFoundTemplate = "not_found"
	loadingTemplate  = "loading"
)

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer template.TemplateRenderer
	stylesheet       string
	currency         string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path != "" {
			cfg.templateFS = os.DirFS(path)
		}
	}
}

// WithTemplateRenderer injects a preconfigured template renderer.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithStylesheet replaces the embedded stylesheet.
func WithStylesheet(css string) Option {
	return func(cfg *config) {
		cfg.stylesheet = css
	}
}

// WithCurrency sets the currency shown in the checkout summary.
func WithCurrency(currency string) Option {
	return func(cfg *config) {
		if currency != "" {
			cfg.currency = currency
		}
	}
}

// Renderer produces HTML documents.
type Renderer struct {
	templates  template.TemplateRenderer
	stylesheet string
	currency   string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		stylesheet: defaultStylesheet(),
		currency:   payment.DefaultCurrency,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	tr := cfg.templateRenderer
	if tr == nil {
		sub, err := fs.Sub(cfg.templateFS, "templates")
		if err != nil {
			return nil, fmt.Errorf("html: templates: %w", err)
		}
		if _, statErr := fs.Stat(sub, pageTemplate+".tpl"); statErr != nil {
			sub = cfg.templateFS
		}
		tplEngine, err := pongo.New(pongo.WithFS(sub))
		if err != nil {
			return nil, fmt.Errorf("html: configure template renderer: %w", err)
		}
		tr = tplEngine
	}

	return &Renderer{templates: tr, stylesheet: cfg.stylesheet, currency: cfg.currency}, nil
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "text/html; charset=utf-8" }

// Render draws the view. Ready views render the page, not-found and failed
// loads render the not-found document and loading renders a placeholder.
func (r *Renderer) Render(ctx context.Context, view engine.View, opts render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, errors.New("html: renderer is not configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data := map[string]any{
		"stylesheet": r.stylesheet,
		"action":     opts.Action,
	}
	for key, fn := range opts.TemplateFuncs() {
		data[key] = fn
	}
	if opts.Theme != nil {
		data["theme_name"] = opts.Theme.Theme
		data["theme_variant"] = opts.Theme.Variant
		data["theme_css"] = cssVarsStyle(opts.Theme.CSSVars)
	}

	name := loadingTemplate
	switch view.State {
	case engine.StateReady:
		name = pageTemplate
		page := render.BuildPage(view, opts)
		data["page"] = page
		data["hidden"] = render.SortedHiddenFields(render.MergeHiddenFields(opts.HiddenFields, render.Hidden(render.PageField, page.Code)))
		if page.IsPayment {
			data["payment"] = r.checkout(view)
		}
	case engine.StateNotFound:
		name = notFoundTemplate
		data["not_found"] = render.BuildNotFound(view, opts)
	}

	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html: render %s: %w", name, err)
	}
	return []byte(out), nil
}

// checkoutModel is the payment panel shown on payment pages.
type checkoutModel struct {
	Summary *summaryModel
	Plans   []planModel
	Field   string
	Payable bool
	State   string
	Message string
}

type planModel struct {
	Key         string
	Label       string
	Monthly     string
	Total       string
	Description string
	Badge       string
	Checked     bool
}

type summaryModel struct {
	Label        string
	MonthlyPrice string
	Duration     string
	Total        string
}

func (r *Renderer) checkout(view engine.View) checkoutModel {
	req := payment.SummaryFromAnswers(view.Answers, r.currency)
	model := checkoutModel{
		Summary: &summaryModel{
			Label:        req.Label,
			MonthlyPrice: formatMoney(req.MonthlyPrice, req.Currency),
			Duration:     req.Duration,
			Total:        formatMoney(req.Amount, req.Currency),
		},
		Field:   payment.AnswerPlanKey,
		Payable: !view.Payment.Paid,
		State:   "idle",
	}
	for _, plan := range payment.Plans() {
		pm := planModel{
			Key:         plan.Key,
			Label:       plan.Label,
			Monthly:     formatMoney(plan.MonthlyPrice, req.Currency),
			Total:       formatMoney(plan.TotalPrice, req.Currency),
			Description: plan.Description,
			Checked:     plan.Key == req.PlanKey,
		}
		switch {
		case plan.BestValue:
			pm.Badge = "Best value"
		case plan.Popular:
			pm.Badge = "Popular"
		}
		model.Plans = append(model.Plans, pm)
	}
	switch {
	case view.Payment.Paid:
		model.State = "success"
		model.Message = "Payment " + view.Payment.Token + " confirmed"
	case view.Payment.Err != "":
		model.State = "error"
		model.Message = view.Payment.Err
	}
	return model
}

func formatMoney(amount float64, currency string) string {
	if amount <= 0 {
		return ""
	}
	if strings.EqualFold(currency, "usd") {
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("%.2f %s", amount, strings.ToUpper(currency))
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, key := range keys {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.NewReplacer("<", "", ">", "", ";", "", "}", "").Replace(vars[key]))
		b.WriteByte(';')
	}
	b.WriteByte('}')
	return b.String()
}
