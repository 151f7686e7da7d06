package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches and decodes a form configuration.
type Loader interface {
	Load(ctx context.Context, src Source) (*Config, error)
}

// LoaderOptions configures the built-in loader.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS locations.
	FileSystem fs.FS

	// HTTPClient enables URL sources. Nil keeps the loader offline unless
	// AllowHTTPFallback is set.
	HTTPClient *http.Client

	// AllowHTTPFallback enables URL sources with a default client.
	AllowHTTPFallback bool

	// RequestTimeout caps remote fetches.
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem sets the fs.FS used for SourceKindFS locations.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.FileSystem = files
	}
}

// WithHTTPClient injects the client used for URL sources.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.HTTPClient = client
	}
}

// WithHTTPFallback enables URL sources with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(opts *LoaderOptions) {
		opts.AllowHTTPFallback = true
		opts.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies options over the zero value.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	var opts LoaderOptions
	for _, option := range options {
		if option != nil {
			option(&opts)
		}
	}
	return opts
}
