package intake

import (
	"io/fs"

	"github.com/goliatone/go-intake/pkg/renderers/html"
)

// EmbeddedTemplates exposes the built-in HTML renderer templates so callers
// can reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// StylesheetFS exposes the default stylesheet so hosts can serve it instead
// of inlining it.
//
// Typical mount:
//
//	mux.Handle("/intake/",
//	  http.StripPrefix("/intake/",
//	    http.FileServerFS(intake.StylesheetFS()),
//	  ),
//	)
func StylesheetFS() fs.FS {
	return html.AssetsFS()
}
