package paginate

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// elementCount computes a page's element count: the length of the
// named body field when arrayName is set, otherwise the length of the
// body itself. Length follows the upstream contract's untyped
// semantics: arrays and objects count members, strings count runes,
// null counts zero.
func elementCount(body []byte, arrayName string) (int, error) {
	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return 0, fmt.Errorf("parse page body: %w", err)
	}

	if arrayName != "" {
		obj, ok := value.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("page body is not an object, cannot read field %q", arrayName)
		}
		value = obj[arrayName]
	}

	switch v := value.(type) {
	case []any:
		return len(v), nil
	case map[string]any:
		return len(v), nil
	case string:
		return utf8.RuneCountInString(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("page body has no length (got %T)", value)
	}
}

// intField extracts an integer field from a JSON object body. The
// bounded-range paginator uses it to read the declared maximum.
func intField(body []byte, field string) (int, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return 0, fmt.Errorf("parse body for field %q: %w", field, err)
	}
	raw, ok := obj[field]
	if !ok {
		return 0, fmt.Errorf("field %q missing from body", field)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("field %q is not an integer: %w", field, err)
	}
	return n, nil
}

// withParam returns params with every existing entry for key stripped
// and a single key=value appended. The original slice is not modified.
func withParam(params []string, key, value string) []string {
	out := make([]string, 0, len(params)+1)
	prefix := key + "="
	for _, p := range params {
		if p == key || len(p) >= len(prefix) && p[:len(prefix)] == prefix {
			continue
		}
		out = append(out, p)
	}
	return append(out, fmt.Sprintf("%s=%s", key, value))
}
