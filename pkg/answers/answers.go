package answers

import "sort"

// Answers maps question codes to their current values.
type Answers map[string]Value

// Get returns the value stored for code, or the zero Value.
func (a Answers) Get(code string) Value {
	if a == nil {
		return Value{}
	}
	return a[code]
}

// Clone returns a copy that shares no slices with the receiver.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for code, v := range a {
		switch v.kind {
		case List:
			v = Strings(v.list...)
		case FileList:
			v = Files(v.files...)
		}
		out[code] = v
	}
	return out
}

// Codes returns the answered codes in sorted order.
func (a Answers) Codes() []string {
	out := make([]string, 0, len(a))
	for code := range a {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Payload converts the answers into plain values for serialization.
func (a Answers) Payload() map[string]any {
	out := make(map[string]any, len(a))
	for code, v := range a {
		out[code] = v.Interface()
	}
	return out
}
