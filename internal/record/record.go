// Package record defines the canonical form of the singleton JSON document
// and the normalization applied to incoming payloads.
//
// The normalization rule is fixed: a JSON array is stored as-is; a JSON
// object with at least one key is wrapped into a one-element array; any other
// valid JSON value (null, empty object, string, number, boolean) normalizes
// to the empty array; input that is not valid JSON is rejected with
// [ErrNotJSON]. Repeated normalization is a no-op.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// ErrNotJSON is returned for input that cannot be parsed as JSON.
var ErrNotJSON = errors.New("payload is not valid JSON")

// Empty returns the canonical empty document.
func Empty() []byte {
	return []byte("[]")
}

// Normalize coerces raw into the canonical compact JSON array form.
func Normalize(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, ErrNotJSON
	}
	// trailing non-whitespace after the first value is malformed input
	if err := dec.Decode(new(any)); !errors.Is(err, io.EOF) {
		return nil, ErrNotJSON
	}

	switch v := value.(type) {
	case []any:
		return compact(raw)
	case map[string]any:
		if len(v) == 0 {
			return Empty(), nil
		}
		return wrap(raw)
	default:
		return Empty(), nil
	}
}

// compact re-emits the already-validated input without insignificant
// whitespace, preserving number and key fidelity.
func compact(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, ErrNotJSON
	}
	return buf.Bytes(), nil
}

// wrap produces a one-element array containing the input value.
func wrap(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	if err := json.Compact(&buf, raw); err != nil {
		return nil, ErrNotJSON
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
