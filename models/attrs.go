package models

import (
	"encoding/json"
	"strconv"
)

// Attributes is an opaque attribute map carried verbatim from the
// home-automation backend. Only a handful of keys are ever read by the
// console; everything else passes through untouched.
type Attributes map[string]json.RawMessage

// String resolves an attribute as a string, returning "" when the key
// is absent or not a JSON string.
func (a Attributes) String(key string) string {
	raw, ok := a[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Float resolves an attribute as a number.
func (a Attributes) Float(key string) (float64, bool) {
	raw, ok := a[key]
	if !ok {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		// Some integrations report numeric attributes as strings.
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return f, true
}
