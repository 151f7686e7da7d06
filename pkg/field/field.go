// Package field maps question kinds to the handlers that describe how each
// kind is entered, stored and drawn. New kinds are added by registering a
// handler rather than extending a switch.
package field

import (
	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Control names the family of input a renderer draws for a kind.
type Control string

const (
	ControlInput       Control = "input"
	ControlTextarea    Control = "textarea"
	ControlRadio       Control = "radio"
	ControlCheckbox    Control = "checkbox"
	ControlSelect      Control = "select"
	ControlFile        Control = "file"
	ControlUnsupported Control = "unsupported"
)

// Choice describes how a kind selects among options.
type Choice int

const (
	ChoiceNone Choice = iota
	ChoiceSingle
	ChoiceMulti
)

// Handler describes one question kind.
type Handler struct {
	Kind schema.Kind
	// Control is the input family a renderer should draw.
	Control Control
	// InputType is the HTML input type for ControlInput kinds.
	InputType string
	// Shape is the answer shape the kind stores.
	Shape answers.ValueKind
	// Choice reports option semantics.
	Choice Choice
	// AutoAdvance marks kinds whose selection may move to the next page.
	AutoAdvance bool
}

// Supported reports whether the handler draws a real control.
func (h Handler) Supported() bool {
	return h.Control != ControlUnsupported
}

// Accepts reports whether v has the shape this kind stores. Absent values are
// always accepted; unsupported kinds accept anything.
func (h Handler) Accepts(v answers.Value) bool {
	if v.Kind() == answers.None || !h.Supported() {
		return true
	}
	return v.Kind() == h.Shape
}

// Unsupported is the inert handler used for kinds nobody registered.
func Unsupported(kind schema.Kind) Handler {
	return Handler{Kind: kind, Control: ControlUnsupported}
}

// Builtins returns the handlers for the built-in kinds.
func Builtins() []Handler {
	return []Handler{
		{Kind: schema.KindText, Control: ControlInput, InputType: "text", Shape: answers.Scalar},
		{Kind: schema.KindEmail, Control: ControlInput, InputType: "email", Shape: answers.Scalar},
		{Kind: schema.KindNumber, Control: ControlInput, InputType: "number", Shape: answers.Scalar},
		{Kind: schema.KindDate, Control: ControlInput, InputType: "date", Shape: answers.Scalar},
		{Kind: schema.KindTextarea, Control: ControlTextarea, Shape: answers.Scalar},
		{Kind: schema.KindRadio, Control: ControlRadio, Shape: answers.Scalar, Choice: ChoiceSingle, AutoAdvance: true},
		{Kind: schema.KindCheckbox, Control: ControlCheckbox, Shape: answers.List, Choice: ChoiceMulti},
		{Kind: schema.KindSearchableDropdown, Control: ControlSelect, Shape: answers.Scalar, Choice: ChoiceSingle},
		{Kind: schema.KindDocument, Control: ControlFile, Shape: answers.FileList},
	}
}
