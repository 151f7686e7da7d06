package webform

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/payment"
	"github.com/goliatone/go-intake/pkg/render"
)

func parseForm(r *http.Request, maxMemory int64) error {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// apply records the posted values of the questions the page showed. It
// returns a notice when a document selection was rejected.
func (h *Handler) apply(ctx context.Context, e *engine.Engine, r *http.Request) string {
	var notice string
	for _, node := range engine.Flatten(e.Visible()) {
		q := node.Question
		var err error
		switch node.Handler.Control {
		case field.ControlInput, field.ControlTextarea:
			if values, ok := r.PostForm[q.Code]; ok {
				err = e.Set(ctx, q.Code, answers.Text(strings.TrimSpace(first(values))))
			}
		case field.ControlRadio, field.ControlSelect:
			value := r.PostFormValue(q.Code)
			if value == "" {
				continue
			}
			if _, known := q.Option(value); !known && len(q.Options) > 0 {
				h.logger.Debug("ignoring unknown option", zap.String("question", q.Code), zap.String("value", value))
				continue
			}
			err = e.Set(ctx, q.Code, answers.Text(value))
		case field.ControlCheckbox:
			err = h.applyChecks(ctx, e, node, r.PostForm[q.Code])
		case field.ControlFile:
			headers := uploaded(r, q.Code)
			if len(headers) == 0 {
				continue
			}
			files := describe(headers)
			text := func(id string, data map[string]any) string {
				return locale.Text(nil, h.locale, id, data)
			}
			if rejection := render.CheckFiles(q, files, text); rejection != nil {
				notice = rejection.Error()
				continue
			}
			err = e.Set(ctx, q.Code, answers.Files(files...))
		}
		if err != nil {
			h.logger.Warn("apply posted value", zap.String("question", q.Code), zap.Error(err))
		}
	}

	if key := r.PostFormValue(payment.AnswerPlanKey); key != "" {
		if plan, ok := payment.LookupPlan(key); ok {
			if err := e.SetMany(ctx, payment.SelectionAnswers(plan)); err != nil {
				h.logger.Warn("record plan", zap.String("plan", key), zap.Error(err))
			}
		}
	}
	return notice
}

// applyChecks brings a multi-choice answer to the posted selection through
// Toggle so exclusive options keep their meaning.
func (h *Handler) applyChecks(ctx context.Context, e *engine.Engine, node engine.Node, posted []string) error {
	want := make(map[string]bool, len(posted))
	for _, v := range posted {
		want[v] = true
	}
	code := node.Question.Code
	for _, v := range node.Value.Strings() {
		if !want[v] {
			if _, err := e.Toggle(ctx, code, v, false); err != nil {
				return err
			}
		}
	}
	current := make(map[string]bool)
	for _, v := range e.Value(code).Strings() {
		current[v] = true
	}
	for _, opt := range node.Question.Options {
		if want[opt.Value] && !current[opt.Value] {
			if _, err := e.Toggle(ctx, code, opt.Value, true); err != nil {
				return err
			}
		}
	}
	return nil
}

func uploaded(r *http.Request, code string) []*multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	var out []*multipart.FileHeader
	for _, fh := range r.MultipartForm.File[code] {
		if fh != nil && fh.Filename != "" {
			out = append(out, fh)
		}
	}
	return out
}

// describe keeps file metadata only; contents are never stored.
func describe(headers []*multipart.FileHeader) []answers.File {
	files := make([]answers.File, 0, len(headers))
	for _, fh := range headers {
		files = append(files, answers.File{
			Name: filepath.Base(fh.Filename),
			Size: fh.Size,
			Type: fh.Header.Get("Content-Type"),
		})
	}
	return files
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
