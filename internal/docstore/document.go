package docstore

import (
	"encoding/json"
	"strings"
	"time"
)

// Fields is the raw field map of a stored document.
type Fields map[string]any

// Document is one record read from a collection.
type Document struct {
	ID     string
	Fields Fields
}

// String returns the string at key.
func (f Fields) String(key string) (string, bool) {
	s, ok := f[key].(string)
	return s, ok
}

// Number returns the numeric value at key. JSON decoding yields float64, but
// values put directly by Go code may be any integer type.
func (f Fields) Number(key string) (float64, bool) {
	return toFloat(f[key])
}

// Map returns the nested object at key.
func (f Fields) Map(key string) (Fields, bool) {
	switch m := f[key].(type) {
	case Fields:
		return m, true
	case map[string]any:
		return Fields(m), true
	}
	return nil, false
}

// Slice returns the list at key.
func (f Fields) Slice(key string) ([]any, bool) {
	s, ok := f[key].([]any)
	return s, ok
}

// Time returns the timestamp at key, normalized to UTC. Missing or
// unrecognized values give the zero time.
func (f Fields) Time(key string) time.Time {
	t, _ := NormalizeTime(f[key])
	return t
}

// NormalizeTime converts the timestamp encodings found in stored documents to
// a UTC time.Time. Recognized encodings:
//   - time.Time and *time.Time
//   - RFC 3339 strings (with or without fractional seconds), naive
//     "2006-01-02T15:04:05" strings and date-only strings
//   - unix seconds, or unix milliseconds when the value exceeds 1e12
//   - exported timestamp objects {"seconds"|"_seconds", "nanoseconds"|"_nanoseconds"}
func NormalizeTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t.UTC(), !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), !t.IsZero()
	case string:
		return parseTimeString(t)
	case map[string]any:
		return parseTimestampObject(t)
	case Fields:
		return parseTimestampObject(t)
	}
	if n, ok := toFloat(v); ok {
		return fromUnixNumber(n), true
	}
	return time.Time{}, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

func parseTimeString(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseTimestampObject(m map[string]any) (time.Time, bool) {
	secs, ok := firstNumber(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, false
	}
	nanos, _ := firstNumber(m, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(secs), int64(nanos)).UTC(), true
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if n, ok := toFloat(m[k]); ok {
			return n, true
		}
	}
	return 0, false
}

func fromUnixNumber(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	secs := int64(n)
	nanos := int64((n - float64(secs)) * 1e9)
	return time.Unix(secs, nanos).UTC()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
