package validation

import (
	"bytes"
	"encoding/json"
	"strings"
)

var jsonNull = []byte("null")

// nullFields returns the top-level keys of a JSON object whose value is null.
// A present null overwrites a field while an absent key leaves it alone.
func nullFields(data []byte) (map[string]bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	var nulls map[string]bool
	for name, raw := range fields {
		if !bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
			continue
		}
		if nulls == nil {
			nulls = make(map[string]bool)
		}
		nulls[strings.ToLower(name)] = true
	}
	return nulls, nil
}
