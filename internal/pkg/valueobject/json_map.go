// Package valueobject holds small value types shared across modules.
package valueobject

import (
	"maps"
	"strconv"
)

// JSONMap is a free-form JSON object, such as a health-ID provider profile.
// @swaggertype object
type JSONMap map[string]any

// Clone returns a shallow copy. Nil stays nil.
func (j JSONMap) Clone() JSONMap {
	return maps.Clone(j)
}

// GetString returns the value under key as text. JSON numbers and booleans
// are formatted; anything else yields "".
func (j JSONMap) GetString(key string) string {
	switch v := j[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// First returns the first non-empty GetString result among keys.
func (j JSONMap) First(keys ...string) string {
	for _, k := range keys {
		if v := j.GetString(k); v != "" {
			return v
		}
	}
	return ""
}
