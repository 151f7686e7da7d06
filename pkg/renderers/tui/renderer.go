// Package tui drives intake sessions from a terminal. Runner walks an engine
// interactively through survey prompts; Renderer prints a plain text
// snapshot of a view.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/render"
)

// Name is the registry key of the text renderer.
const Name = "text"

// Renderer implements render.Renderer as a human readable summary.
type Renderer struct {
	theme Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the text renderer.
func New(options ...Option) *Renderer {
	s := defaultSettings()
	for _, opt := range options {
		if opt != nil {
			opt(&s)
		}
	}
	return &Renderer{theme: s.theme}
}

func (r *Renderer) Name() string { return Name }

func (r *Renderer) ContentType() string { return "text/plain; charset=utf-8" }

func (r *Renderer) Render(ctx context.Context, view engine.View, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var b strings.Builder
	switch view.State {
	case engine.StateReady:
		writePage(&b, render.BuildPage(view, opts), r.theme)
	case engine.StateNotFound:
		nf := render.BuildNotFound(view, opts)
		fmt.Fprintf(&b, "%s\n%s\n", nf.Title, nf.Body)
		if nf.Reason != "" {
			fmt.Fprintf(&b, "%s%s\n", r.theme.ErrorPrefix, nf.Reason)
		}
		fmt.Fprintf(&b, "> %s\n", nf.Action)
	default:
		b.WriteString("...\n")
	}
	return []byte(b.String()), nil
}

func writePage(b *strings.Builder, page render.Page, theme Theme) {
	fmt.Fprintf(b, "%s [%s]\n", page.Title, render.ProgressLabel(page.Index, page.Total))
	if page.Notice != "" {
		fmt.Fprintf(b, "%s%s\n", theme.InfoPrefix, page.Notice)
	}
	if desc := render.StripHTML(page.DescHTML); desc != "" {
		fmt.Fprintf(b, "%s\n", desc)
	}
	for _, w := range page.Widgets {
		if text := render.StripHTML(w.HTML); text != "" {
			fmt.Fprintf(b, "%s\n", text)
		}
	}
	b.WriteString("\n")
	for _, row := range page.Rows {
		writeRow(b, row, theme)
	}
	if page.Submitted {
		fmt.Fprintf(b, "\n%s\n", page.Labels.Done)
	}
}

func writeRow(b *strings.Builder, row render.Row, theme Theme) {
	indent := strings.Repeat("  ", row.Depth)
	if row.Unsupported != "" {
		fmt.Fprintf(b, "%s- %s\n", indent, row.Unsupported)
		return
	}
	marker := ""
	if row.Required {
		marker = " *"
	}
	fmt.Fprintf(b, "%s- %s%s: %s\n", indent, row.Label, marker, rowValue(row))
	if row.Error != "" {
		fmt.Fprintf(b, "%s  %s%s\n", indent, theme.ErrorPrefix, row.Error)
	}
}

func rowValue(row render.Row) string {
	if len(row.Files) > 0 {
		names := make([]string, len(row.Files))
		for i, f := range row.Files {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	}
	return row.Value
}
