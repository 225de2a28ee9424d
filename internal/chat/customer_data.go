package chat

import (
	"encoding/json"
	"strings"
)

// CustomerData holds the structured data a customer submitted during a
// conversation. The backend delivers it either as a JSON object or as a
// JSON-encoded string holding an object; both are resolved here, at one
// boundary, so no other code re-parses it.
//
// When the payload cannot be parsed the raw text is retained and
// Fields returns nil; reconciliation treats that as an empty object.
type CustomerData struct {
	raw    string
	fields map[string]any
}

// DecodeCustomerData resolves a raw customer_data payload. A nil or
// empty payload yields the zero value.
func DecodeCustomerData(data json.RawMessage) CustomerData {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return CustomerData{}
	}

	if s[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return CustomerData{raw: s}
		}
		inner = strings.TrimSpace(inner)
		if inner == "" {
			return CustomerData{}
		}
		return decodeCustomerObject(inner)
	}
	return decodeCustomerObject(s)
}

func decodeCustomerObject(s string) CustomerData {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return CustomerData{raw: s}
	}
	return CustomerData{raw: s, fields: fields}
}

// IsZero reports whether no customer data has been received.
func (d CustomerData) IsZero() bool {
	return d.raw == "" && d.fields == nil
}

// Fields returns the decoded key/value map, nil when the payload was
// absent or malformed.
func (d CustomerData) Fields() map[string]any {
	return d.fields
}

// Raw returns the original payload text, useful for display and
// archival even when parsing failed.
func (d CustomerData) Raw() string {
	return d.raw
}

// Field looks up a value whose normalized key contains any of the given
// fragments. Keys are matched case-insensitively.
func (d CustomerData) Field(fragments ...string) (any, bool) {
	for key, value := range d.fields {
		k := strings.ToLower(key)
		for _, frag := range fragments {
			if strings.Contains(k, frag) {
				return value, true
			}
		}
	}
	return nil, false
}
