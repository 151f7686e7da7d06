package render

import (
	"fmt"
	"path"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeSelector resolves a theme and variant into a selection.
type ThemeSelector interface {
	Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error)
}

// DefaultThemeName names the built-in theme.
const DefaultThemeName = "intake"

// DefaultManifest is the built-in theme: the clinic palette with a dark
// variant.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":         "#253c3c",
			"brand-soft":    "#1932312a",
			"surface":       "#ffffff",
			"text":          "#111827",
			"muted":         "#4b5563",
			"danger":        "#ef4444",
			"radius":        "0.75rem",
			"font-family":   "\"Inter\", \"Helvetica Neue\", Helvetica, sans-serif",
			"warning-tint":  "#fefce8",
			"warning-edge":  "#fef08a",
			"progress-fill": "#253c3c",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#0f1a1a",
					"text":    "#f3f4f6",
					"muted":   "#9ca3af",
				},
			},
		},
	}
}

// StaticSelector serves a fixed set of manifests.
type StaticSelector struct {
	Manifests map[string]*theme.Manifest
	Fallback  string
}

// NewStaticSelector returns a selector that knows the built-in theme plus
// any extra manifests.
func NewStaticSelector(extra ...*theme.Manifest) *StaticSelector {
	s := &StaticSelector{Manifests: map[string]*theme.Manifest{}, Fallback: DefaultThemeName}
	for _, m := range append([]*theme.Manifest{DefaultManifest()}, extra...) {
		if m != nil && m.Name != "" {
			s.Manifests[m.Name] = m
		}
	}
	return s
}

func (s *StaticSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	m, ok := s.Manifests[name]
	if !ok {
		m = s.Manifests[s.Fallback]
	}
	if m == nil {
		return nil, fmt.Errorf("render: theme %q not found", name)
	}
	if _, ok := m.Variants[variant]; !ok {
		variant = ""
	}
	return &theme.Selection{Theme: m.Name, Variant: variant, Manifest: m}, nil
}

// ThemeConfig flattens a selection into renderer configuration: variant
// tokens override base tokens, every token becomes a --name CSS variable and
// asset keys resolve against the manifest prefix.
func ThemeConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	m := sel.Manifest
	variant := m.Variants[sel.Variant]

	tokens := mergeStrings(m.Tokens, variant.Tokens)
	partials := mergeStrings(m.Templates, variant.Templates)
	files := mergeStrings(m.Assets.Files, variant.Assets.Files)
	prefix := m.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}

	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+strings.TrimPrefix(key, "--")] = value
	}

	return &theme.RendererConfig{
		Theme:    sel.Theme,
		Variant:  sel.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if prefix == "" {
				return file
			}
			return path.Join(prefix, file)
		},
	}
}

// ResolveTheme selects and flattens a theme in one step.
func ResolveTheme(selector ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		selector = NewStaticSelector()
	}
	sel, err := selector.Select(name, variant)
	if err != nil {
		return nil, err
	}
	return ThemeConfig(sel), nil
}

func mergeStrings(base, override map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
