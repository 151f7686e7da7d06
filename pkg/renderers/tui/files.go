package tui

import (
	"fmt"
	"io/fs"
	"mime"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/render"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Rejection explains why a document selection was refused.
type Rejection = render.Rejection

// SplitPaths splits a comma separated path list, dropping blanks.
func SplitPaths(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SelectFiles resolves paths into file answers, enforcing the question's
// count, size and type limits as a whole: one violating file rejects the
// selection.
func SelectFiles(q schema.Question, paths []string, stat func(string) (fs.FileInfo, error), text func(id string, data map[string]any) string) ([]answers.File, error) {
	if q.MaxFilesAllowed > 0 && len(paths) > q.MaxFilesAllowed {
		return nil, &Rejection{Message: text(locale.FilesTooMany, map[string]any{"Max": q.MaxFilesAllowed, "Count": q.MaxFilesAllowed})}
	}

	files := make([]answers.File, 0, len(paths))
	for _, p := range paths {
		info, err := stat(p)
		if err != nil {
			return nil, fmt.Errorf("tui: %s: %w", p, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("tui: %s is a directory", p)
		}
		files = append(files, answers.File{
			Name: filepath.Base(p),
			Size: info.Size(),
			Type: mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
			Path: p,
		})
	}
	if err := render.CheckFiles(q, files, text); err != nil {
		return nil, err
	}
	return files, nil
}
