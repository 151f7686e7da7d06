package render

import (
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/schema"
	"github.com/goliatone/go-intake/pkg/validation"
)

// Rejection explains why a document selection was refused. Hosts show it as
// a notice; it never reaches the answers or the error set.
type Rejection struct {
	Message string
}

func (r *Rejection) Error() string { return r.Message }

// CheckFiles enforces a document question's count, size and type limits on
// a selection as a whole: one violating file rejects all of them.
func CheckFiles(q schema.Question, files []answers.File, text func(id string, data map[string]any) string) error {
	if text == nil {
		text = func(id string, data map[string]any) string {
			return locale.Text(nil, "", id, data)
		}
	}
	if q.MaxFilesAllowed > 0 && len(files) > q.MaxFilesAllowed {
		return &Rejection{Message: text(locale.FilesTooMany, map[string]any{"Max": q.MaxFilesAllowed, "Count": q.MaxFilesAllowed})}
	}
	for _, f := range files {
		if q.MaxFileSize > 0 && float64(f.Size) > q.MaxFileSize*1024*1024 {
			return &Rejection{Message: text(locale.FilesTooLarge, map[string]any{"Max": FormatSize(q.MaxFileSize)})}
		}
		if len(q.Filetype) > 0 && !validation.Accepts(q.Filetype, f) {
			label := f.Type
			if label == "" {
				label = f.Name
			}
			return &Rejection{Message: text(locale.ValidationFileType, map[string]any{"Type": label})}
		}
	}
	return nil
}
