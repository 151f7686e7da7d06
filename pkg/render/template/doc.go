// Package template defines the template engine seam HTML renderers draw
// through, so the engine can be swapped without touching renderer code.
package template
