// Package contract describes the submission payload of an intake form as an
// OpenAPI 3 document and checks payloads against it.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

const (
	// SubmissionPath is the endpoint the document declares.
	SubmissionPath = "/submissions"
	// SubmissionSchema names the payload schema under components.
	SubmissionSchema = "Submission"
	// KindExtension records the question kind on each property.
	KindExtension = "x-intake-kind"
	// PageExtension records the page a property is asked on.
	PageExtension = "x-intake-page"
)

// Options tune the generated document.
type Options struct {
	Title       string
	Version     string
	OperationID string
}

// Option mutates Options.
type Option func(*Options)

// WithTitle sets info.title.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(o *Options) { o.Version = version }
}

// WithOperationID sets the submission operationId.
func WithOperationID(id string) Option {
	return func(o *Options) { o.OperationID = id }
}

// Build derives the submission document from a form config. Every question
// becomes a property; top-level required questions are required. Unknown
// properties stay allowed because stale answers are submitted too.
func Build(cfg *schema.Config, opts ...Option) (*openapi3.T, error) {
	if cfg == nil || len(cfg.Pages) == 0 {
		return nil, schema.ErrNoPages
	}
	options := Options{Title: "Intake submission", Version: "1.0.0", OperationID: "submitIntake"}
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}

	payload := openapi3.NewObjectSchema()
	payload.Description = "Answers keyed by question code."
	var required []string
	for _, page := range cfg.Sorted().Pages {
		for _, q := range page.Questions {
			if q.Required && q.Code != "" {
				required = append(required, q.Code)
			}
		}
		schema.Walk(page.Questions, func(q schema.Question, _ int) bool {
			if q.Code == "" {
				return true
			}
			prop := questionSchema(q)
			if prop.Extensions == nil {
				prop.Extensions = map[string]any{}
			}
			prop.Extensions[PageExtension] = page.Code
			payload.WithProperty(q.Code, prop)
			return true
		})
	}
	payload.Required = required

	ref := openapi3.NewSchemaRef("#/components/schemas/"+SubmissionSchema, payload)
	responses := openapi3.NewResponsesWithCapacity(2)
	responses.Set("201", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission accepted")})
	responses.Set("400", &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Payload does not match the form")})

	paths := openapi3.NewPaths()
	paths.Set(SubmissionPath, &openapi3.PathItem{
		Post: &openapi3.Operation{
			OperationID: options.OperationID,
			Summary:     "Submit intake answers",
			RequestBody: &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
			},
			Responses: responses,
		},
	})

	return &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: options.Title, Version: options.Version},
		Paths:   paths,
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{SubmissionSchema: openapi3.NewSchemaRef("", payload)},
		},
	}, nil
}

func questionSchema(q schema.Question) *openapi3.Schema {
	var s *openapi3.Schema
	switch q.Type {
	case schema.KindCheckbox:
		item := openapi3.NewStringSchema()
		if values := optionValues(q); len(values) > 0 {
			item.WithEnum(values...)
		}
		s = openapi3.NewArraySchema().WithItems(item)
		s.UniqueItems = true
	case schema.KindDocument:
		file := openapi3.NewObjectSchema().
			WithProperty("name", openapi3.NewStringSchema()).
			WithProperty("size", openapi3.NewIntegerSchema()).
			WithProperty("type", openapi3.NewStringSchema()).
			WithProperty("path", openapi3.NewStringSchema())
		file.Required = []string{"name"}
		s = openapi3.NewArraySchema().WithItems(file)
		if q.MaxFilesAllowed > 0 {
			s.WithMaxItems(int64(q.MaxFilesAllowed))
		}
	case schema.KindRadio, schema.KindSearchableDropdown:
		s = openapi3.NewStringSchema()
		if values := optionValues(q); len(values) > 0 {
			s.WithEnum(values...)
		}
	case schema.KindEmail:
		s = openapi3.NewStringSchema().WithFormat("email")
	case schema.KindDate:
		s = openapi3.NewStringSchema().WithFormat("date")
	default:
		s = openapi3.NewStringSchema()
	}

	if q.Pattern != "" && s.Type.Is(openapi3.TypeString) {
		if _, err := regexp.Compile(q.Pattern); err == nil {
			s.WithPattern(q.Pattern)
		}
	}
	s.Title = q.Text
	s.Description = q.Hint
	s.Extensions = map[string]any{KindExtension: string(q.Type)}
	return s
}

func optionValues(q schema.Question) []any {
	out := make([]any, 0, len(q.Options))
	for _, opt := range q.Options {
		out = append(out, opt.Value)
	}
	return out
}

// Validate checks the document itself the way a consumer loading it would.
func Validate(ctx context.Context, doc *openapi3.T) error {
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return fmt.Errorf("contract: validate: %w", err)
	}
	return nil
}

// Load parses a previously generated document.
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx, IsExternalRefsAllowed: false}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := Validate(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Marshal renders the document as "json" or "yaml".
func Marshal(doc *openapi3.T, format string) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("contract: marshal: %w", err)
	}
	switch strings.ToLower(format) {
	case "", "json":
		return data, nil
	case "yaml", "yml":
		var tree any
		if err := json.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("contract: marshal: %w", err)
		}
		return yaml.Marshal(tree)
	default:
		return nil, fmt.Errorf("contract: unsupported format %q", format)
	}
}

// ErrNoSubmissionSchema is returned when a document lacks the payload schema.
var ErrNoSubmissionSchema = errors.New("contract: submission schema missing")

// CheckPayload validates answers against the document's submission schema.
// Empty answers are left out of the payload before checking.
func CheckPayload(doc *openapi3.T, a answers.Answers) error {
	if doc == nil || doc.Components == nil {
		return ErrNoSubmissionSchema
	}
	ref, ok := doc.Components.Schemas[SubmissionSchema]
	if !ok || ref == nil || ref.Value == nil {
		return ErrNoSubmissionSchema
	}

	generic, err := Payload(a)
	if err != nil {
		return err
	}
	if err := ref.Value.VisitJSON(generic, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("contract: payload: %w", err)
	}
	return nil
}

// Payload converts answers into the JSON shape the submission endpoint
// receives, dropping empty values.
func Payload(a answers.Answers) (map[string]any, error) {
	present := make(answers.Answers, len(a))
	for code, v := range a {
		if !v.Empty() {
			present[code] = v
		}
	}
	data, err := json.Marshal(present)
	if err != nil {
		return nil, fmt.Errorf("contract: encode payload: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("contract: encode payload: %w", err)
	}
	return out, nil
}
