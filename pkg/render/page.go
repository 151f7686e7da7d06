package render

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/engine"
	"github.com/goliatone/go-intake/pkg/field"
	"github.com/goliatone/go-intake/pkg/locale"
)

// Page is the presentational model of one engine snapshot. Text fields are
// plain; fields ending in HTML are sanitized markup.
type Page struct {
	Code        string
	Title       string
	DescHTML    string
	Columns     int
	Widgets     []Widget
	Rows        []Row
	Index       int
	Total       int
	Percent     int
	CanBack     bool
	IsLast      bool
	IsPayment   bool
	PaymentGate bool
	Submitted   bool
	Notice      string
	Labels      Labels
}

// Widget is a sanitized content block.
type Widget struct {
	Type string
	HTML string
}

// Labels are the localized chrome strings.
type Labels struct {
	Next   string
	Back   string
	Submit string
	Select string
	Done   string
}

// Row is one visible question, flattened depth-first so follow-ups follow
// their parent.
type Row struct {
	Code        string
	Label       string
	Hint        string
	Placeholder string
	Kind        string
	Control     string
	InputType   string
	Depth       int
	Span        int
	Required    bool
	Value       string
	Options     []Choice
	Files       []answers.File
	Error       string
	Accept      string
	SizeHint    string
	MaxFiles    int
	Min         string
	Max         string
	Unsupported string
	Revealed    bool
}

// Choice is an option with its selection state.
type Choice struct {
	Label     string
	Value     string
	Sublabel  string
	Image     string
	Checked   bool
	Exclusive bool
}

// BuildPage converts a ready snapshot into the presentational model.
func BuildPage(view engine.View, opts RenderOptions) Page {
	page := Page{
		Code:        view.Page.Code,
		Title:       StripHTML(view.Page.Title),
		DescHTML:    SanitizeHTML(view.Page.Desc),
		Columns:     clampColumns(view.Page.Columns),
		Index:       view.Index,
		Total:       view.Total,
		Percent:     int(math.Round(view.Progress * 100)),
		CanBack:     view.CanBack,
		IsLast:      view.IsLast,
		IsPayment:   view.Page.IsPayment(),
		PaymentGate: view.PaymentGate,
		Submitted:   view.Submitted,
		Notice:      opts.Notice,
		Labels: Labels{
			Next:   opts.Text(locale.NavNext, nil),
			Back:   opts.Text(locale.NavBack, nil),
			Submit: opts.Text(locale.NavSubmit, nil),
			Select: opts.Text(locale.FieldSelectPlaceholder, nil),
			Done:   opts.Text(locale.FormSubmitted, nil),
		},
	}
	for _, w := range view.Page.Widgets {
		if content := SanitizeHTML(w.Content); content != "" {
			page.Widgets = append(page.Widgets, Widget{Type: w.Type, HTML: content})
		}
	}
	for _, node := range engine.Flatten(view.Nodes) {
		page.Rows = append(page.Rows, buildRow(node, opts))
	}
	return page
}

func buildRow(node engine.Node, opts RenderOptions) Row {
	q := node.Question
	row := Row{
		Code:        q.Code,
		Label:       StripHTML(q.Text),
		Hint:        StripHTML(q.Hint),
		Placeholder: q.Placeholder,
		Kind:        string(q.Type),
		Control:     string(node.Handler.Control),
		InputType:   node.Handler.InputType,
		Depth:       node.Depth,
		Span:        q.Span(),
		Required:    q.Required,
		Error:       node.Error,
		Revealed:    node.Revealed(),
	}
	if q.Min != nil {
		row.Min = q.Min.String()
	}
	if q.Max != nil {
		row.Max = q.Max.String()
	}

	switch node.Handler.Control {
	case field.ControlUnsupported:
		row.Unsupported = opts.Text(locale.FieldUnsupported, map[string]any{"Type": string(q.Type)})
	case field.ControlFile:
		row.Files = node.Value.Files()
		row.Accept = strings.Join(q.Filetype, ",")
		row.MaxFiles = q.MaxFilesAllowed
		if q.MaxFileSize > 0 {
			row.SizeHint = opts.Text(locale.FilesMaxSizeHint, map[string]any{"Max": FormatSize(q.MaxFileSize)})
		}
	default:
		row.Value = node.Value.String()
	}
	if row.Placeholder == "" && node.Handler.Control == field.ControlSelect {
		row.Placeholder = opts.Text(locale.FieldSelectPlaceholder, nil)
	}

	for _, opt := range q.Options {
		row.Options = append(row.Options, Choice{
			Label:     StripHTML(opt.Label),
			Value:     opt.Value,
			Sublabel:  StripHTML(opt.Sublabel),
			Image:     opt.Image,
			Checked:   node.Value.Matches(opt.Value),
			Exclusive: opt.Exclusive(),
		})
	}
	return row
}

// NotFound is the model of the not-found page.
type NotFound struct {
	Title  string
	Body   string
	Action string
	Reason string
}

// BuildNotFound describes the not-found state, including the load error when
// the config never arrived.
func BuildNotFound(view engine.View, opts RenderOptions) NotFound {
	nf := NotFound{
		Title:  opts.Text(locale.PageNotFoundTitle, nil),
		Body:   opts.Text(locale.PageNotFoundBody, map[string]any{"Code": view.Requested}),
		Action: opts.Text(locale.PageNotFoundAction, nil),
	}
	if view.Err != nil {
		nf.Reason = view.Err.Error()
	}
	return nf
}

// FormatSize prints a megabyte limit without trailing zeros.
func FormatSize(mb float64) string {
	return strconv.FormatFloat(mb, 'f', -1, 64)
}

func clampColumns(n int) int {
	if n >= 2 {
		return 2
	}
	return 1
}

// ProgressLabel renders "current / total" for compact displays.
func ProgressLabel(index, total int) string {
	if total <= 0 || index < 0 {
		return ""
	}
	return fmt.Sprintf("%d / %d", index+1, total)
}
