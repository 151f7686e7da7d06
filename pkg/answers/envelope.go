package answers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// StorageKey is the fixed slot answers are persisted under.
	StorageKey = "intake_form_data"
	// EnvelopeVersion tags the persisted payload format.
	EnvelopeVersion = "1.0"
)

// Envelope is the persisted shape of an answer snapshot.
type Envelope struct {
	FormData  Answers `json:"formData"`
	Timestamp int64   `json:"timestamp"`
	Version   string  `json:"version"`
}

// Encode wraps a snapshot in an Envelope stamped with now.
func Encode(a Answers, now time.Time) ([]byte, error) {
	if a == nil {
		a = Answers{}
	}
	return json.Marshal(Envelope{
		FormData:  a,
		Timestamp: now.UnixMilli(),
		Version:   EnvelopeVersion,
	})
}

// Decode reads an enveloped snapshot or a bare code→value mapping. Empty
// input yields empty answers; malformed input yields empty answers and an
// error wrapping ErrCorrupt.
func Decode(data []byte) (Answers, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Answers{}, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Answers{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	_, hasData := fields["formData"]
	_, hasVersion := fields["version"]
	if hasData && hasVersion {
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return Answers{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if env.FormData == nil {
			env.FormData = Answers{}
		}
		return env.FormData, nil
	}

	out := make(Answers, len(fields))
	for code, raw := range fields {
		var v Value
		if err := json.Unmarshal(raw, &v); err != nil {
			return Answers{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, code, err)
		}
		out[code] = v
	}
	return out, nil
}
