package template

import "io"

// TemplateRenderer executes named templates and inline template strings.
// Data maps may hold structs; engines read exported fields directly.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data map[string]any) error
}
