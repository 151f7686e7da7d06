package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/schema"
)

// Transformer mutates a loaded config before an engine is opened on it.
// Implementations can retitle pages, reword questions or inject pages.
type Transformer interface {
	Transform(ctx context.Context, cfg *schema.Config) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, cfg *schema.Config) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, cfg *schema.Config) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, cfg)
}

// ErrUnknownPatchTarget is returned when a preset names a page or question
// the config does not have.
var ErrUnknownPatchTarget = errors.New("orchestrator: preset targets unknown code")

// PresetTransformer applies declarative overrides read from a JSON or YAML
// document:
//
//	pages:
//	  about: {title: "A little about you"}
//	questions:
//	  first_name: {text: "Given name", required: true}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Pages     map[string]pagePatch     `yaml:"pages"`
	Questions map[string]questionPatch `yaml:"questions"`
}

type pagePatch struct {
	Title   string `yaml:"title"`
	Desc    string `yaml:"desc"`
	Columns *int   `yaml:"columns"`
}

type questionPatch struct {
	Text          string `yaml:"text"`
	Hint          string `yaml:"hint"`
	Placeholder   string `yaml:"placeholder"`
	Required      *bool  `yaml:"required"`
	RequiredError string `yaml:"requiredError"`
}

// NewPresetTransformer constructs a transformer from raw JSON or YAML bytes.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("preset transformer: parse document: %w", err)
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches. Every patch must hit a page or question.
func (t *PresetTransformer) Transform(_ context.Context, cfg *schema.Config) error {
	if t == nil || cfg == nil {
		return nil
	}

	seenPages := make(map[string]bool, len(t.document.Pages))
	seenQuestions := make(map[string]bool, len(t.document.Questions))
	for i := range cfg.Pages {
		page := &cfg.Pages[i]
		if patch, ok := t.document.Pages[page.Code]; ok {
			patch.apply(page)
			seenPages[page.Code] = true
		}
		t.patchQuestions(page.Questions, seenQuestions)
	}

	var missing []string
	for code := range t.document.Pages {
		if !seenPages[code] {
			missing = append(missing, "page "+code)
		}
	}
	for code := range t.document.Questions {
		if !seenQuestions[code] {
			missing = append(missing, "question "+code)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", ErrUnknownPatchTarget, strings.Join(missing, ", "))
	}
	return nil
}

func (t *PresetTransformer) patchQuestions(questions []schema.Question, seen map[string]bool) {
	for i := range questions {
		q := &questions[i]
		if patch, ok := t.document.Questions[q.Code]; ok {
			patch.apply(q)
			seen[q.Code] = true
		}
		t.patchQuestions(q.Followups, seen)
	}
}

func (p pagePatch) apply(page *schema.Page) {
	if p.Title != "" {
		page.Title = p.Title
	}
	if p.Desc != "" {
		page.Desc = p.Desc
	}
	if p.Columns != nil {
		page.Columns = *p.Columns
	}
}

func (p questionPatch) apply(q *schema.Question) {
	if p.Text != "" {
		q.Text = p.Text
	}
	if p.Hint != "" {
		q.Hint = p.Hint
	}
	if p.Placeholder != "" {
		q.Placeholder = p.Placeholder
	}
	if p.Required != nil {
		q.Required = *p.Required
	}
	if p.RequiredError != "" {
		q.RequiredError = p.RequiredError
	}
}
