// tokencodec/claims.go
package tokencodec

import (
	"encoding/json"
	"time"
)

// ClaimAs returns the named claim asserted to type T. The second return value is false when
// the claim is absent or holds a different type; claim lookups never return an error.
func ClaimAs[T any](c Claims, name string) (T, bool) {
	var zero T
	raw, ok := c[name]
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

// ClaimAsInt returns the named claim as an int64, accepting the float64 and json.Number
// representations produced by JSON decoding.
func ClaimAsInt(c Claims, name string) (int64, bool) {
	raw, ok := c[name]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

// ClaimAsTime returns the named claim interpreted as a numeric date (seconds since the
// Unix epoch), the convention used by registered claims such as exp, iat and nbf.
func ClaimAsTime(c Claims, name string) (time.Time, bool) {
	switch v := c[name].(type) {
	case float64:
		sec := int64(v)
		nsec := int64((v - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return time.Time{}, false
		}
		sec := int64(f)
		nsec := int64((f - float64(sec)) * float64(time.Second))
		return time.Unix(sec, nsec), true
	default:
		return time.Time{}, false
	}
}

// ClaimAsStringSlice returns the named claim as a slice of strings, accepting both a JSON
// array of strings and a single string value (the aud claim appears in both forms).
func ClaimAsStringSlice(c Claims, name string) ([]string, bool) {
	switch v := c[name].(type) {
	case string:
		return []string{v}, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}
