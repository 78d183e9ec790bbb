package driver

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// TypeConversionError represents an error during type conversion from database types.
type TypeConversionError struct {
	Expected string
	Actual   string
	Field    string
}

func (e *TypeConversionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("type conversion error for field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
	}
	return fmt.Sprintf("type conversion error: expected %s, got %s", e.Expected, e.Actual)
}

// NewTypeConversionError creates a new TypeConversionError.
func NewTypeConversionError(expected, actual, field string) *TypeConversionError {
	return &TypeConversionError{
		Expected: expected,
		Actual:   actual,
		Field:    field,
	}
}

// AsString safely converts an interface{} to string.
func AsString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// AsInt64 safely converts an interface{} to int64.
func AsInt64(v any) (int64, bool) {
	if v == nil {
		return 0, false
	}
	i, ok := v.(int64)
	return i, ok
}

// AsNumber converts a Cypher number to float64. Neo4j returns integers as int64
// and floats as float64; properties such as github_stars may be stored as either.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// AsStringSlice converts a Cypher list of strings. Lists come back from the
// driver as []any, so both shapes are accepted; non-string items are skipped.
func AsStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out, true
	}
	return nil, false
}

// AsMap safely converts an interface{} to map[string]any.
func AsMap(v any) (map[string]any, bool) {
	if v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// MustInt64 converts an interface{} to int64 or returns an error.
func MustInt64(v any, field string) (int64, error) {
	i, ok := AsInt64(v)
	if !ok {
		return 0, NewTypeConversionError("int64", fmt.Sprintf("%T", v), field)
	}
	return i, nil
}

// optionalNumber returns the record value under key as *float64; null or
// missing keys yield nil.
func optionalNumber(record *db.Record, key string) *float64 {
	v, found := record.Get(key)
	if !found {
		return nil
	}
	f, ok := AsNumber(v)
	if !ok {
		return nil
	}
	return &f
}

// stringValue returns the record value under key, or "" when absent or null.
func stringValue(record *db.Record, key string) string {
	v, _ := record.Get(key)
	s, _ := AsString(v)
	return s
}
