package validation

import (
	"testing"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/schema"
)

func TestValidate_Required(t *testing.T) {
	q := schema.Question{Code: "name", Type: schema.KindText, Required: true}

	cases := []struct {
		name  string
		q     schema.Question
		value answers.Value
		want  string
		fail  bool
	}{
		{"absent", q, answers.Value{}, "This field is required", true},
		{"empty string", q, answers.Text(""), "This field is required", true},
		{"empty list", q, answers.Strings(), "This field is required", true},
		{"present", q, answers.Text("Ada"), "", false},
		{"override", withRequiredError(q, "Tell us your name"), answers.Text(""), "Tell us your name", true},
		{"optional", schema.Question{Code: "x", Type: schema.KindText}, answers.Text(""), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, fail := Validate(tc.q, tc.value)
			if got != tc.want || fail != tc.fail {
				t.Fatalf("Validate = (%q, %v), want (%q, %v)", got, fail, tc.want, tc.fail)
			}
		})
	}
}

func withRequiredError(q schema.Question, msg string) schema.Question {
	q.RequiredError = msg
	return q
}

func TestValidate_Deterministic(t *testing.T) {
	q := schema.Question{Code: "name", Type: schema.KindText, Required: true, RequiredError: "Needed"}
	first, _ := Validate(q, answers.Text(""))
	second, _ := Validate(q, answers.Text(""))
	if first != second || first != "Needed" {
		t.Fatalf("got %q then %q", first, second)
	}
}

func TestValidate_PatternIsSearch(t *testing.T) {
	q := schema.Question{Code: "zip", Type: schema.KindText, Pattern: `\d{5}`}

	if _, fail := Validate(q, answers.Text("zip 12345 ok")); fail {
		t.Fatalf("unanchored pattern should match a substring")
	}
	if msg, fail := Validate(q, answers.Text("abc")); !fail || msg != "Invalid format" {
		t.Fatalf("got (%q, %v)", msg, fail)
	}
	if _, fail := Validate(q, answers.Text("")); fail {
		t.Fatalf("pattern must not fire on empty values")
	}

	anchored := schema.Question{Code: "zip", Type: schema.KindText, Pattern: `^\d{5}$`, PatternError: "Five digits"}
	if msg, fail := Validate(anchored, answers.Text("zip 12345")); !fail || msg != "Five digits" {
		t.Fatalf("anchored pattern: got (%q, %v)", msg, fail)
	}
}

func TestValidate_RequiredWinsOverPattern(t *testing.T) {
	q := schema.Question{Code: "x", Type: schema.KindText, Required: true, Pattern: `^a`}
	if msg, _ := Validate(q, answers.Text("")); msg != "This field is required" {
		t.Fatalf("got %q", msg)
	}
}

func TestValidate_InvalidPatternNeverFires(t *testing.T) {
	q := schema.Question{Code: "x", Type: schema.KindText, Pattern: `([`}
	if _, fail := Validate(q, answers.Text("anything")); fail {
		t.Fatalf("broken expression should be ignored")
	}
}

func TestValidate_NumberRange(t *testing.T) {
	q := schema.Question{Code: "age", Type: schema.KindNumber, Min: schema.NumberBound(10), Max: schema.TextBound("20")}

	cases := map[string]struct {
		want string
		fail bool
	}{
		"5":    {"Minimum value is 10", true},
		"25":   {"Maximum value is 20", true},
		"15":   {"", false},
		"10":   {"", false},
		"20.0": {"", false},
		"abc":  {"", false},
		"":     {"", false},
	}
	for input, tc := range cases {
		got, fail := Validate(q, answers.Text(input))
		if got != tc.want || fail != tc.fail {
			t.Fatalf("%q: got (%q, %v), want (%q, %v)", input, got, fail, tc.want, tc.fail)
		}
	}

	q.MinError, q.MaxError = "Too small", "Too big"
	if got, _ := Validate(q, answers.Text("5")); got != "Too small" {
		t.Fatalf("min override: %q", got)
	}
	if got, _ := Validate(q, answers.Text("25")); got != "Too big" {
		t.Fatalf("max override: %q", got)
	}
}

func TestValidate_NumberRangeMaxWinsWhenBothFire(t *testing.T) {
	q := schema.Question{Code: "n", Type: schema.KindNumber, Min: schema.NumberBound(50), Max: schema.NumberBound(10)}
	if got, _ := Validate(q, answers.Text("30")); got != "Maximum value is 10" {
		t.Fatalf("got %q", got)
	}
}

func TestValidate_DateRange(t *testing.T) {
	q := schema.Question{Code: "dob", Type: schema.KindDate, Min: schema.TextBound("1900-01-01"), Max: schema.TextBound("2010-12-31")}

	if got, _ := Validate(q, answers.Text("1899-12-31")); got != "Date must be after 1900-01-01" {
		t.Fatalf("min: %q", got)
	}
	if got, _ := Validate(q, answers.Text("2011-01-01")); got != "Date must be before 2010-12-31" {
		t.Fatalf("max: %q", got)
	}
	// calendar ordering, not string ordering
	if _, fail := Validate(q, answers.Text("1985-06-15T08:00:00Z")); fail {
		t.Fatalf("in-range timestamp should pass")
	}
	if _, fail := Validate(q, answers.Text("not a date")); fail {
		t.Fatalf("unparseable dates are not range-checked")
	}
}

func TestValidate_RangeIgnoredForOtherKinds(t *testing.T) {
	q := schema.Question{Code: "t", Type: schema.KindText, Min: schema.NumberBound(10)}
	if _, fail := Validate(q, answers.Text("5")); fail {
		t.Fatalf("range rules only apply to number and date questions by default")
	}
}

func TestValidator_StrictRules(t *testing.T) {
	v := New(WithStrictRules())

	email := schema.Question{Code: "email", Type: schema.KindEmail}
	if got, fail := v.Validate(email, answers.Text("not-an-email")); !fail || got != "Please enter a valid email address" {
		t.Fatalf("email: (%q, %v)", got, fail)
	}
	if _, fail := v.Validate(email, answers.Text("a@b.co")); fail {
		t.Fatalf("valid email rejected")
	}

	text := schema.Question{Code: "bio", Type: schema.KindTextarea, Min: schema.NumberBound(3)}
	if got, _ := v.Validate(text, answers.Text("ab")); got != "Must be at least 3 characters" {
		t.Fatalf("length: %q", got)
	}

	doc := schema.Question{Code: "id", Type: schema.KindDocument, Filetype: []string{"pdf", "image/*"}, MaxFileSize: 1}
	if _, fail := v.Validate(doc, answers.Files(answers.File{Name: "scan.PDF", Size: 100})); fail {
		t.Fatalf("pdf should be accepted")
	}
	if got, _ := v.Validate(doc, answers.Files(answers.File{Name: "notes.txt", Type: "text/plain", Size: 100})); got != "File type text/plain is not accepted" {
		t.Fatalf("file type: %q", got)
	}
	if got, _ := v.Validate(doc, answers.Files(answers.File{Name: "big.png", Type: "image/png", Size: 2 << 20})); got != "File size must be less than 1MB" {
		t.Fatalf("file size: %q", got)
	}
}

func TestValidator_LocaleAndRegister(t *testing.T) {
	v := New(WithLocale("es"))
	q := schema.Question{Code: "x", Type: schema.KindText, Required: true}
	if got, _ := v.Validate(q, answers.Value{}); got != "Este campo es obligatorio" {
		t.Fatalf("es: %q", got)
	}

	v.Register("postcode", func(q schema.Question, value answers.Value, m Messages) (string, bool) {
		if value.Text() == "00000" {
			return "No such postcode", true
		}
		return "", false
	})
	if got, _ := v.Validate(schema.Question{Code: "p", Type: "postcode"}, answers.Text("00000")); got != "No such postcode" {
		t.Fatalf("registered rule: %q", got)
	}
}
