package answers

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestValue_Empty(t *testing.T) {
	cases := []struct {
		name  string
		value Value
		want  bool
	}{
		{"absent", Value{}, true},
		{"empty text", Text(""), true},
		{"text", Text("x"), false},
		{"empty list", Strings(), true},
		{"list", Strings("a"), false},
		{"empty files", Files(), true},
		{"files", Files(File{Name: "scan.pdf", Size: 10}), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.value.Empty(); got != tc.want {
				t.Fatalf("Empty() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValue_Matches(t *testing.T) {
	if !Text("yes").Matches("yes") || Text("yes ").Matches("yes") {
		t.Fatalf("scalar match must be exact")
	}
	if !Strings("a", "yes").Matches("yes") || Strings("a").Matches("yes") {
		t.Fatalf("list match must test membership")
	}
	if Files(File{Name: "yes"}).Matches("yes") {
		t.Fatalf("files never match a trigger")
	}
}

func TestValue_JSONShapes(t *testing.T) {
	in := Answers{
		"name":     Text("Ada"),
		"symptoms": Strings("cough", "fever"),
		"scans":    Files(File{Name: "a.png", Size: 2048, Type: "image/png"}),
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var generic map[string]any
	if err := json.Unmarshal(data, &generic); err != nil {
		t.Fatalf("unmarshal generic: %v", err)
	}
	if generic["name"] != "Ada" {
		t.Fatalf("name = %#v", generic["name"])
	}
	if _, ok := generic["symptoms"].([]any); !ok {
		t.Fatalf("symptoms should encode as an array, got %#v", generic["symptoms"])
	}

	var out Answers
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for code, want := range in {
		if !out[code].Equal(want) {
			t.Fatalf("%s: got %v want %v", code, out[code], want)
		}
	}
}

func TestValue_EmptyCollectionsRoundTrip(t *testing.T) {
	in := Answers{
		"symptoms": Strings(),
		"scans":    Files(),
	}
	data, err := Encode(in, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if bytes.Contains(data, []byte("null")) {
		t.Fatalf("empty collections should encode as [], got %s", data)
	}

	out, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for code, want := range in {
		got := out[code]
		if got.Kind() != List || !got.Equal(want) {
			t.Fatalf("%s: got %s %v, want an empty selection equal to %v", code, got.Kind(), got, want)
		}
	}
	if Strings().Equal(Text("")) {
		t.Fatalf("an empty selection is not an empty text answer")
	}
}

func TestValue_UnmarshalTolerantScalars(t *testing.T) {
	var out Answers
	if err := json.Unmarshal([]byte(`{"price": 444, "ok": true, "none": null}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["price"].Text() != "444" || out["ok"].Text() != "true" {
		t.Fatalf("numbers and booleans should become text, got %v / %v", out["price"], out["ok"])
	}
	if out["none"].Kind() != None {
		t.Fatalf("null should decode as absent")
	}
}

func TestAnswers_CloneIsolation(t *testing.T) {
	orig := Answers{"list": Strings("a")}
	clone := orig.Clone()
	clone["list"] = Strings("b")
	clone["new"] = Text("x")

	if diff := cmp.Diff([]string{"a"}, orig["list"].Strings()); diff != "" {
		t.Fatalf("original changed (-want +got):\n%s", diff)
	}
	if _, ok := orig["new"]; ok {
		t.Fatalf("clone shares map")
	}
	if diff := cmp.Diff([]string{"list", "new"}, clone.Codes()); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}
