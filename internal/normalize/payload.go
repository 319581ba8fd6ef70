package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload marks a per-row fault: the row's data field could not
// be decoded into an object. Callers skip the row and continue the batch.
var ErrMalformedPayload = errors.New("malformed response payload")

// Unwrap turns a raw data field into the inner payload object used for
// field extraction.
//
// Strings are JSON-decoded; a decode that yields another string is treated
// as double-encoding and decoded once more. Once an object is obtained,
// exactly one level of platform envelope is unwrapped: if the object has a
// "data" property that is itself an encoded or plain object, that object is
// the inner payload. Deeper nesting stays as-is and later resolves to empty
// answers rather than an error.
func Unwrap(raw any) (map[string]any, error) {
	obj, err := decodeObject(raw)
	if err != nil {
		return nil, err
	}
	inner, ok := obj["data"]
	if !ok {
		return obj, nil
	}
	switch v := inner.(type) {
	case map[string]any:
		return v, nil
	case string:
		var decoded any
		if err := json.Unmarshal([]byte(v), &decoded); err == nil {
			if m, ok := decoded.(map[string]any); ok {
				return m, nil
			}
		}
	}
	return obj, nil
}

func decodeObject(raw any) (map[string]any, error) {
	var text string
	switch v := raw.(type) {
	case map[string]any:
		return v, nil
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		return nil, fmt.Errorf("%w: unsupported data field type %T", ErrMalformedPayload, raw)
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	// Double-encoded payloads decode to a string on the first pass.
	if s, ok := decoded.(string); ok {
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload decodes to %T, not an object", ErrMalformedPayload, decoded)
	}
	return obj, nil
}
