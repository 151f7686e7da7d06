package schema

import "strings"

// Kind names the input control a question asks for. Kinds outside the built-in
// set are accepted at decode time and rendered as unsupported placeholders.
type Kind string

const (
	KindText               Kind = "text"
	KindEmail              Kind = "email"
	KindNumber             Kind = "number"
	KindTextarea           Kind = "textarea"
	KindDate               Kind = "date"
	KindRadio              Kind = "radio"
	KindCheckbox           Kind = "checkbox"
	KindSearchableDropdown Kind = "searchableDropdown"
	KindDocument           Kind = "document"
)

// PageTypePayment marks a page that hosts the checkout widget.
const PageTypePayment = "payment"

// Config is the whole intake form: an ordered walk of pages. It is loaded once
// and treated as immutable for the lifetime of a session.
type Config struct {
	Pages []Page `json:"pages"`
}

// Page is one routable step of the form.
type Page struct {
	ID        ID         `json:"id"`
	Code      string     `json:"code"`
	Title     string     `json:"title"`
	Desc      string     `json:"desc,omitempty"`
	Order     int        `json:"order"`
	Columns   int        `json:"columns,omitempty"`
	PageType  string     `json:"pageType,omitempty"`
	Questions []Question `json:"questions"`
	Widgets   []Widget   `json:"widgets,omitempty"`
}

// IsPayment reports whether the page hosts the payment collaborator.
func (p Page) IsPayment() bool {
	return strings.EqualFold(strings.TrimSpace(p.PageType), PageTypePayment)
}

// Widget is a free-form content block shown above a page's questions.
type Widget struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Question is a single field definition. Follow-up questions nest recursively
// and are revealed when the parent's answer matches ShowFollowupWhen.
type Question struct {
	ID               ID             `json:"id"`
	Code             string         `json:"code"`
	Text             string         `json:"text"`
	Hint             string         `json:"hint,omitempty"`
	Placeholder      string         `json:"placeholder,omitempty"`
	Type             Kind           `json:"type"`
	Order            int            `json:"order"`
	Colspan          int            `json:"colspan,omitempty"`
	Required         bool           `json:"required,omitempty"`
	Pattern          string         `json:"pattern,omitempty"`
	Min              *Bound         `json:"min,omitempty"`
	Max              *Bound         `json:"max,omitempty"`
	RequiredError    string         `json:"requiredError,omitempty"`
	PatternError     string         `json:"patternError,omitempty"`
	MinError         string         `json:"minError,omitempty"`
	MaxError         string         `json:"maxError,omitempty"`
	Options          []Option       `json:"options,omitempty"`
	ShowFollowupWhen string         `json:"showFollowupWhen,omitempty"`
	Followups        []Question     `json:"followup_questions,omitempty"`
	Filetype         []string       `json:"filetype,omitempty"`
	MaxFileSize      float64        `json:"maxFileSize,omitempty"`
	MaxFilesAllowed  int            `json:"maxFilesAllowed,omitempty"`
	Component        string         `json:"component,omitempty"`
	ComponentProps   map[string]any `json:"componentProps,omitempty"`
}

// HasTrigger reports whether the question can reveal follow-ups.
func (q Question) HasTrigger() bool {
	return q.ShowFollowupWhen != "" && len(q.Followups) > 0
}

// Option returns the option whose value matches v.
func (q Question) Option(v string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.Value == v {
			return opt, true
		}
	}
	return Option{}, false
}

// Span returns the layout column span, clamped to 1 or 2.
func (q Question) Span() int {
	if q.Colspan >= 2 {
		return 2
	}
	return 1
}

// Option is a selectable choice. Plain strings in the configuration decode to
// an option whose label and value are the same.
type Option struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Sublabel string `json:"sublabel,omitempty"`
	Image    string `json:"image,omitempty"`
}

const exclusiveMarker = "none of the above"

// Exclusive reports whether selecting this option must clear every other
// selection of a multi-choice question.
func (o Option) Exclusive() bool {
	return strings.Contains(strings.ToLower(o.Label), exclusiveMarker)
}

// Walk visits questions depth-first in declaration order. Returning false
// from fn skips the question's follow-ups.
func Walk(questions []Question, fn func(q Question, depth int) bool) {
	walk(questions, 0, fn)
}

func walk(questions []Question, depth int, fn func(Question, int) bool) {
	for _, q := range questions {
		if fn(q, depth) && len(q.Followups) > 0 {
			walk(q.Followups, depth+1, fn)
		}
	}
}

// Flatten returns every question of the tree, follow-ups included.
func Flatten(questions []Question) []Question {
	var out []Question
	Walk(questions, func(q Question, _ int) bool {
		out = append(out, q)
		return true
	})
	return out
}
