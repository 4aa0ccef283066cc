package provider

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ExtractValue normalizes a numeric value from various API response formats.
//
// Trefle returns nested objects like {"deg_c": 18, "deg_f": 64} and plain
// numbers; Perenual mixes numbers, numeric strings and 0/1 flags. This
// handles all of them.
//
// Returns the scalar float64 value, and ok=false if not extractable.
func ExtractValue(val interface{}) (float64, bool) {
	if val == nil {
		return 0, false
	}

	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
		return 0, false
	case map[string]interface{}:
		// Trefle nested measurements: prefer metric
		for _, key := range []string{"deg_c", "cm", "mm", "value", "total"} {
			if inner, exists := v[key]; exists && inner != nil {
				return ExtractValue(inner)
			}
		}
		return 0, false
	default:
		return 0, false
	}
}

// ExtractBool reads booleans that providers encode as true/false, 0/1 or
// "yes"/"no". Returns ok=false when the value is absent or unrecognized.
func ExtractBool(val interface{}) (bool, bool) {
	switch v := val.(type) {
	case bool:
		return v, true
	case float64:
		if v == 0 || v == 1 {
			return v == 1, true
		}
	case int:
		if v == 0 || v == 1 {
			return v == 1, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "1":
			return true, true
		case "false", "no", "0":
			return false, true
		}
	}
	return false, false
}

// ExtractString returns a trimmed, non-sentinel string. Arrays yield their
// first usable element, which covers Perenual's list-valued scientific_name.
func ExtractString(val interface{}) (string, bool) {
	switch v := val.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" || IsSentinel(s) {
			return "", false
		}
		return s, true
	case []interface{}:
		for _, item := range v {
			if s, ok := ExtractString(item); ok {
				return s, true
			}
		}
	}
	return "", false
}

// ExtractStrings returns every usable string in a list (or a single string
// as a one-element list), preserving provider order and dropping duplicates.
func ExtractStrings(val interface{}) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	switch v := val.(type) {
	case string:
		if s, ok := ExtractString(v); ok {
			add(s)
		}
	case []interface{}:
		for _, item := range v {
			if s, ok := ExtractString(item); ok {
				add(s)
			}
		}
	}
	return out
}

// Lookup walks a decoded JSON object along path and returns the value found,
// or nil when any step is missing or not an object.
func Lookup(m map[string]interface{}, path ...string) interface{} {
	var cur interface{} = m
	for _, key := range path {
		obj, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur = obj[key]
	}
	return cur
}

// StringPtr is ExtractString returning nil for unusable values.
func StringPtr(val interface{}) *string {
	if s, ok := ExtractString(val); ok {
		return &s
	}
	return nil
}

// BoolPtr is ExtractBool returning nil for unusable values.
func BoolPtr(val interface{}) *bool {
	if b, ok := ExtractBool(val); ok {
		return &b
	}
	return nil
}

// sentinelPrefixes are placeholder strings providers return instead of data.
var sentinelPrefixes = []string{
	"upgrade plans to premium",
	"upgrade plan to premium",
	"coming soon",
}

var sentinelValues = map[string]bool{
	"unknown":                   true,
	"unknown plant":             true,
	"n/a":                       true,
	"none":                      true,
	"null":                      true,
	"no description available.": true,
}

// IsSentinel reports whether s is a provider placeholder rather than data.
func IsSentinel(s string) bool {
	l := strings.ToLower(strings.TrimSpace(s))
	if sentinelValues[l] {
		return true
	}
	for _, p := range sentinelPrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}
