package schema

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Source identifies where a form configuration lives so loaders can read it
// from disk, an fs.FS or a remote endpoint.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type source struct {
	kind     SourceKind
	location string
}

func (s source) Kind() SourceKind { return s.kind }

func (s source) Location() string { return s.location }

func (s source) String() string {
	return string(s.kind) + ":" + s.location
}

// SourceFromFile points at a configuration file on disk.
func SourceFromFile(path string) Source {
	return source{kind: SourceKindFile, location: filepath.Clean(path)}
}

// SourceFromFS points at a configuration entry inside the loader's fs.FS.
func SourceFromFS(name string) Source {
	return source{kind: SourceKindFS, location: name}
}

// SourceFromURL validates raw and returns a remote Source. It panics on an
// invalid URL so configuration mistakes fail at startup.
func SourceFromURL(raw string) Source {
	src, err := parseURLSource(raw)
	if err != nil {
		panic(err)
	}
	return src
}

// ParseSource picks a Source kind from a location string: http and https
// locations become URL sources, everything else is treated as a file path.
func ParseSource(location string) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrEmptySource
	}
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return parseURLSource(location)
	}
	return SourceFromFile(location), nil
}

func parseURLSource(raw string) (Source, error) {
	if raw == "" {
		return nil, ErrEmptySource
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return source{kind: SourceKindURL, location: raw}, nil
}
