package field

import (
	"testing"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

func TestRegistry_Builtins(t *testing.T) {
	reg := NewRegistry()

	cases := []struct {
		kind    schema.Kind
		control Control
		shape   answers.ValueKind
	}{
		{schema.KindText, ControlInput, answers.Scalar},
		{schema.KindEmail, ControlInput, answers.Scalar},
		{schema.KindNumber, ControlInput, answers.Scalar},
		{schema.KindDate, ControlInput, answers.Scalar},
		{schema.KindTextarea, ControlTextarea, answers.Scalar},
		{schema.KindRadio, ControlRadio, answers.Scalar},
		{schema.KindCheckbox, ControlCheckbox, answers.List},
		{schema.KindSearchableDropdown, ControlSelect, answers.Scalar},
		{schema.KindDocument, ControlFile, answers.FileList},
	}
	for _, tc := range cases {
		h, ok := reg.Lookup(tc.kind)
		if !ok {
			t.Fatalf("%s not registered", tc.kind)
		}
		if h.Control != tc.control || h.Shape != tc.shape {
			t.Fatalf("%s: got control=%s shape=%s", tc.kind, h.Control, h.Shape)
		}
	}
	if len(reg.Kinds()) != len(cases) {
		t.Fatalf("kinds = %v", reg.Kinds())
	}
}

func TestRegistry_ResolveUnknownIsInert(t *testing.T) {
	h := NewRegistry().Resolve("signature")
	if h.Supported() || h.Control != ControlUnsupported || h.Kind != "signature" {
		t.Fatalf("unexpected handler %+v", h)
	}
	if !h.Accepts(answers.Strings("a")) {
		t.Fatalf("unsupported kinds accept any value")
	}
}

func TestRegistry_RegisterNewKind(t *testing.T) {
	reg := NewRegistry()
	custom := Handler{Kind: "phone", Control: ControlInput, InputType: "tel", Shape: answers.Scalar}
	if err := reg.Register(custom); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(custom); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if err := reg.Register(Handler{Kind: " "}); err == nil {
		t.Fatalf("expected kind error")
	}
	if got := reg.Resolve("phone"); got.InputType != "tel" {
		t.Fatalf("resolve = %+v", got)
	}
}

func TestHandler_Accepts(t *testing.T) {
	checkbox := NewRegistry().Resolve(schema.KindCheckbox)
	if !checkbox.Accepts(answers.Strings("a")) || !checkbox.Accepts(answers.Value{}) {
		t.Fatalf("checkbox should accept lists and absent values")
	}
	if checkbox.Accepts(answers.Text("a")) {
		t.Fatalf("checkbox should reject scalars")
	}
}
