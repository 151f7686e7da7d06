package contract

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/testsupport"
)

func TestBuild_DescribesEveryQuestion(t *testing.T) {
	doc, err := Build(testsupport.IntakeConfig(t), WithTitle("Clinic intake"))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := Validate(context.Background(), doc); err != nil {
		t.Fatalf("generated document is invalid: %v", err)
	}
	if doc.Info.Title != "Clinic intake" {
		t.Fatalf("title = %q", doc.Info.Title)
	}

	payload := doc.Components.Schemas[SubmissionSchema].Value
	wantRequired := []string{"first_name", "email", "allergies", "conditions", "smokes", "id_document"}
	if diff := cmp.Diff(wantRequired, payload.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	for _, code := range []string{"allergy_details", "epipen", "signature", "plan_note"} {
		if _, ok := payload.Properties[code]; !ok {
			t.Fatalf("property %s missing", code)
		}
	}

	conditions := payload.Properties["conditions"].Value
	if !conditions.Type.Is("array") || len(conditions.Items.Value.Enum) != 3 {
		t.Fatalf("conditions schema = %+v", conditions)
	}
	docs := payload.Properties["id_document"].Value
	if docs.MaxItems == nil || *docs.MaxItems != 2 {
		t.Fatalf("id_document maxItems = %v", docs.MaxItems)
	}
	if got := payload.Properties["epipen"].Value.Extensions[PageExtension]; got != "health" {
		t.Fatalf("epipen page = %v", got)
	}

	op := doc.Paths.Value(SubmissionPath).Post
	if op == nil || op.OperationID != "submitIntake" || op.Responses.Value("201") == nil {
		t.Fatalf("submission operation = %+v", op)
	}
}

func TestBuild_RequiresPages(t *testing.T) {
	if _, err := Build(testsupport.Config()); err == nil {
		t.Fatalf("expected error for an empty config")
	}
}

func validAnswers() answers.Answers {
	return answers.Answers{
		"first_name":  answers.Text("Ada"),
		"email":       answers.Text("ada@example.com"),
		"allergies":   answers.Text("No"),
		"conditions":  answers.Strings("None of the above"),
		"smokes":      answers.Text("No"),
		"id_document": answers.Files(answers.File{Name: "id.pdf", Size: 1024, Type: "application/pdf"}),
		"age":         answers.Text(""),
		"stale_code":  answers.Text("kept"),
	}
}

func TestCheckPayload(t *testing.T) {
	doc, err := Build(testsupport.IntakeConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := CheckPayload(doc, validAnswers()); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	cases := map[string]func(answers.Answers){
		"missing required": func(a answers.Answers) { delete(a, "first_name") },
		"unknown option":   func(a answers.Answers) { a["smokes"] = answers.Text("Sometimes") },
		"bad checkbox":     func(a answers.Answers) { a["conditions"] = answers.Strings("Gout") },
		"pattern":          func(a answers.Answers) { a["email"] = answers.Text("nope") },
		"too many files": func(a answers.Answers) {
			a["id_document"] = answers.Files(answers.File{Name: "a.pdf"}, answers.File{Name: "b.pdf"}, answers.File{Name: "c.pdf"})
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			a := validAnswers()
			mutate(a)
			if err := CheckPayload(doc, a); err == nil {
				t.Fatalf("expected payload to be rejected")
			}
		})
	}
}

func TestPayload_DropsEmptyValues(t *testing.T) {
	got, err := Payload(validAnswers())
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if _, ok := got["age"]; ok {
		t.Fatalf("empty answers must be dropped")
	}
	if got["stale_code"] != "kept" {
		t.Fatalf("stale answers must be kept: %v", got)
	}
}

func TestMarshalAndLoad(t *testing.T) {
	doc, err := Build(testsupport.IntakeConfig(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	data, err := Marshal(doc, "json")
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	loaded, err := Load(context.Background(), data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := CheckPayload(loaded, validAnswers()); err != nil {
		t.Fatalf("loaded document rejects a valid payload: %v", err)
	}

	out, err := Marshal(doc, "yaml")
	if err != nil {
		t.Fatalf("Marshal yaml: %v", err)
	}
	if !strings.Contains(string(out), "openapi: 3.0.3") {
		t.Fatalf("yaml output missing version:\n%s", out)
	}
	if _, err := Marshal(doc, "toml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}
