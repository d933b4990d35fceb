package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null,
// which *string cannot (RFC 7396 merge-patch semantics):
//   - Present=false: field absent, leave unchanged
//   - Present=true, Value=nil: field is null, clear it
//   - Present=true, Value=&s: field set to s
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked for fields present in the document
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
