package chat

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// FlexID accepts a JSON number or string and normalizes it to a string.
// The backend emits session ids as integers; snapshots re-serialize
// them as strings in some paths.
type FlexID string

func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = FlexID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexID(n.String())
	return nil
}

func (f FlexID) String() string { return string(f) }

// ImageList accepts either a JSON array of strings or a JSON-encoded
// string holding such an array (the backend stores images as text).
type ImageList []string

func (l *ImageList) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*l = nil
		return nil
	}
	if s[0] == '[' {
		var v []string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*l = v
		return nil
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return err
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		*l = nil
		return nil
	}
	var v []string
	if err := json.Unmarshal([]byte(inner), &v); err != nil {
		// A bare URL stored without array framing.
		*l = ImageList{inner}
		return nil
	}
	*l = v
	return nil
}

// wireTimeLayouts covers the timestamp shapes the backend emits:
// ISO8601 with and without zone, and SQL-style datetimes.
var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
}

// WireTime accepts the backend's loose timestamp encodings, including
// unix epoch numbers. The zero value means "absent".
type WireTime struct {
	t time.Time
}

func (w *WireTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		w.t = time.Time{}
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		w.t = ParseWireTime(v)
		return nil
	}
	var epoch float64
	if err := json.Unmarshal(data, &epoch); err != nil {
		return err
	}
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	w.t = time.Unix(sec, nsec).UTC()
	return nil
}

// Time returns the decoded timestamp, zero if absent or unparseable.
func (w WireTime) Time() time.Time { return w.t }

// ParseWireTime parses a timestamp string against the known layouts.
// Returns the zero time when nothing matches.
func ParseWireTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(n, 0).UTC()
	}
	return time.Time{}
}
