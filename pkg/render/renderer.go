// Package render holds the renderer contract shared by every presentation of
// an intake session, the named renderer registry and the presentational page
// model renderers draw from.
package render

import (
	"context"

	"github.com/goliatone/go-intake/pkg/engine"
)

// Renderer turns an engine snapshot into bytes (HTML, plain text, ...).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, view engine.View, options RenderOptions) ([]byte, error)
}
