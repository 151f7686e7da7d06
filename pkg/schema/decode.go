package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Decode parses a configuration document. JSON is tried first; anything that
// is not valid JSON is parsed as YAML and re-encoded so both formats share the
// same tolerant decoders. The returned config is sorted.
func Decode(data []byte, source string) (*Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("schema: document %s is empty", source)
	}

	payload := data
	if !json.Valid(data) {
		var tree any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
		}
		converted, err := json.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("schema: parse %s: %w", source, err)
		}
		payload = converted
	}

	var cfg Config
	if err := json.Unmarshal(payload, &cfg); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", source, err)
	}
	if len(cfg.Pages) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoPages, source)
	}

	sorted := cfg.Sorted()
	return &sorted, nil
}

// ID is an identifier that may be authored as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("schema: id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (o *Option) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*o = Option{Label: s, Value: s}
		return nil
	}

	type plain Option
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if out.Value == "" {
		out.Value = out.Label
	}
	if out.Label == "" {
		out.Label = out.Value
	}
	*o = Option(out)
	return nil
}

// Bound is a min or max constraint. Configurations author it as a number or a
// string; the original text is kept for messages while Float and Time coerce
// it for comparisons.
type Bound struct {
	text    string
	number  float64
	numeric bool
}

// NumberBound returns a bound authored as a JSON number.
func NumberBound(v float64) *Bound {
	return &Bound{text: strconv.FormatFloat(v, 'f', -1, 64), number: v, numeric: true}
}

// TextBound returns a bound authored as a JSON string.
func TextBound(s string) *Bound {
	return &Bound{text: s}
}

func (b Bound) String() string { return b.text }

// Float coerces the bound to a number. Strings are trimmed before parsing.
func (b Bound) Float() (float64, bool) {
	if b.numeric {
		return b.number, true
	}
	trimmed := strings.TrimSpace(b.text)
	if trimmed == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Time parses the bound as a calendar date.
func (b Bound) Time() (time.Time, bool) {
	return ParseDate(b.text)
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = Bound{text: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("schema: bound must be a string or number: %w", err)
	}
	v, err := n.Float64()
	if err != nil {
		return fmt.Errorf("schema: bound %q: %w", n.String(), err)
	}
	*b = Bound{text: n.String(), number: v, numeric: true}
	return nil
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if b.numeric {
		return []byte(b.text), nil
	}
	return json.Marshal(b.text)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate parses the date shapes a date input or configuration produces.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
