package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValueKind tags the shape held by a Value.
type ValueKind int

const (
	// None is an absent answer.
	None ValueKind = iota
	// Scalar holds a single string (text, number, date, radio, dropdown).
	Scalar
	// List holds a string selection set (checkbox).
	List
	// FileList holds document metadata.
	FileList
)

func (k ValueKind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case List:
		return "list"
	case FileList:
		return "files"
	default:
		return "none"
	}
}

// File describes one selected document. Content is never stored.
type File struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type,omitempty"`
	Path string `json:"path,omitempty"`
}

// Value is a single answer: a string, a string list or a file list.
type Value struct {
	kind  ValueKind
	text  string
	list  []string
	files []File
}

// Text returns a scalar answer.
func Text(s string) Value {
	return Value{kind: Scalar, text: s}
}

// Strings returns a selection-set answer. The slice is copied.
func Strings(items ...string) Value {
	return Value{kind: List, list: append([]string{}, items...)}
}

// Files returns a document answer. The slice is copied.
func Files(files ...File) Value {
	return Value{kind: FileList, files: append([]File{}, files...)}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) isCollection() bool { return v.kind == List || v.kind == FileList }

// Empty reports an absent answer, an empty string or an empty collection.
func (v Value) Empty() bool {
	switch v.kind {
	case Scalar:
		return v.text == ""
	case List:
		return len(v.list) == 0
	case FileList:
		return len(v.files) == 0
	default:
		return true
	}
}

// Text returns the scalar text, or "" for other kinds.
func (v Value) Text() string {
	if v.kind != Scalar {
		return ""
	}
	return v.text
}

// Strings returns a copy of the selection set.
func (v Value) Strings() []string {
	if v.kind != List {
		return nil
	}
	return append([]string(nil), v.list...)
}

// Files returns a copy of the file list.
func (v Value) Files() []File {
	if v.kind != FileList {
		return nil
	}
	return append([]File(nil), v.files...)
}

// Matches reports whether a scalar answer equals trigger or a list answer
// contains it.
func (v Value) Matches(trigger string) bool {
	switch v.kind {
	case Scalar:
		return v.text == trigger
	case List:
		for _, item := range v.list {
			if item == trigger {
				return true
			}
		}
	}
	return false
}

// Equal compares two values structurally. An empty selection and an empty
// file list are equal: both encode as [] and decode as an empty selection.
func (v Value) Equal(other Value) bool {
	if v.isCollection() && other.isCollection() && v.Empty() && other.Empty() {
		return true
	}
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case Scalar:
		return v.text == other.text
	case List:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
	case FileList:
		if len(v.files) != len(other.files) {
			return false
		}
		for i := range v.files {
			if v.files[i] != other.files[i] {
				return false
			}
		}
	}
	return true
}

// String renders the value for display.
func (v Value) String() string {
	switch v.kind {
	case Scalar:
		return v.text
	case List:
		return strings.Join(v.list, ", ")
	case FileList:
		names := make([]string, len(v.files))
		for i, f := range v.files {
			names[i] = f.Name
		}
		return strings.Join(names, ", ")
	default:
		return ""
	}
}

// Interface returns the plain Go representation used in JSON payloads.
func (v Value) Interface() any {
	switch v.kind {
	case Scalar:
		return v.text
	case List:
		return append([]string{}, v.list...)
	case FileList:
		return append([]File{}, v.files...)
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts strings, string arrays, file object arrays and, for
// tolerance of older payloads, bare numbers and booleans stored as text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = Value{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Text(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err == nil {
			*v = Strings(items...)
			return nil
		}
		var files []File
		if err := json.Unmarshal(data, &files); err != nil {
			return fmt.Errorf("answers: unsupported list value: %w", err)
		}
		*v = Files(files...)
		return nil
	case '{':
		return fmt.Errorf("answers: object values are not supported")
	default:
		var raw json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*v = Text(string(raw))
		return nil
	}
}
