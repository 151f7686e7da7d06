package schema

import "errors"

var (
	// ErrNoPages is returned when a configuration declares no pages.
	ErrNoPages = errors.New("schema: config has no pages")
	// ErrEmptySource is returned for blank source locations.
	ErrEmptySource = errors.New("schema: empty source location")
	// ErrHTTPDisabled is returned when a URL source is loaded without HTTP support.
	ErrHTTPDisabled = errors.New("schema: http support disabled")
	// ErrUnsupportedSource is returned for unknown source kinds.
	ErrUnsupportedSource = errors.New("schema: unsupported source kind")
)
