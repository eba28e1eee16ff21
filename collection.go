package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeCollection accepts either a bare JSON array or an object holding the
// array under key, and decodes it into out (a pointer to a slice).
func decodeCollection(status int, raw json.RawMessage, key string, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return DecodeError{Status: status, Cause: err}
		}
		return nil
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return DecodeError{Status: status, Cause: err}
	}
	items, ok := envelope[key]
	if !ok {
		return DecodeError{Status: status, Reason: fmt.Sprintf("missing %q collection", key)}
	}
	if err := json.Unmarshal(items, out); err != nil {
		return DecodeError{Status: status, Cause: err}
	}
	return nil
}
