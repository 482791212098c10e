package models

import (
	"encoding/json"
	"strconv"
	"time"
)

// Row decoding helpers. The store returns generic rows; column values
// arrive as string, float64, int64, bool or time.Time depending on the
// driver's mapping, so every accessor tolerates the whole set.

func rowString(row map[string]any, key string) string {
	switch v := row[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func rowStringPtr(row map[string]any, key string) *string {
	if row[key] == nil {
		return nil
	}
	s := rowString(row, key)
	if s == "" {
		return nil
	}
	return &s
}

func rowFloat(row map[string]any, key string) (float64, bool) {
	switch v := row[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func rowFloatPtr(row map[string]any, key string) *float64 {
	if f, ok := rowFloat(row, key); ok {
		return &f
	}
	return nil
}

func rowIntPtr(row map[string]any, key string) *int {
	if f, ok := rowFloat(row, key); ok {
		n := int(f)
		return &n
	}
	return nil
}

func rowBool(row map[string]any, key string) bool {
	b, _ := row[key].(bool)
	return b
}

func rowTime(row map[string]any, key string) time.Time {
	switch v := row[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func rowTimePtr(row map[string]any, key string) *time.Time {
	t := rowTime(row, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

// rowJSON unmarshals a jsonb column into dst. Missing or malformed
// values leave dst untouched.
func rowJSON(row map[string]any, key string, dst any) {
	raw := rowString(row, key)
	if raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), dst)
}
