package loader

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Loader reads configuration documents from files, an fs.FS or HTTP and
// decodes them with schema.Decode.
type Loader struct {
	fs      fs.FS
	http    *http.Client
	timeout time.Duration
}

var _ schema.Loader = (*Loader)(nil)

// New constructs a Loader from resolved options.
func New(options schema.LoaderOptions) *Loader {
	timeout := options.RequestTimeout

	var client *http.Client
	switch {
	case options.HTTPClient != nil:
		clone := *options.HTTPClient
		if timeout > 0 && clone.Timeout == 0 {
			clone.Timeout = timeout
		}
		client = &clone
	case options.AllowHTTPFallback:
		client = &http.Client{Timeout: timeout}
	}

	return &Loader{
		fs:      options.FileSystem,
		http:    client,
		timeout: timeout,
	}
}

// Load fetches the document behind src and decodes it.
func (l *Loader) Load(ctx context.Context, src schema.Source) (*schema.Config, error) {
	if src == nil {
		return nil, schema.ErrEmptySource
	}

	var (
		data []byte
		err  error
	)
	switch src.Kind() {
	case schema.SourceKindFile:
		data, err = loadFile(ctx, src.Location())
	case schema.SourceKindFS:
		data, err = loadFromFS(ctx, l.fs, src.Location())
	case schema.SourceKindURL:
		if l.http == nil {
			return nil, schema.ErrHTTPDisabled
		}
		data, err = loadHTTP(ctx, l.http, src.Location(), l.timeout)
	default:
		err = schema.ErrUnsupportedSource
	}
	if err != nil {
		return nil, fmt.Errorf("loader: %s: %w", src.Location(), err)
	}

	return schema.Decode(data, src.Location())
}
