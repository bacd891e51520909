package utils

import (
	"reflect"
	"strings"
)

// HasEmptyValues reports whether any value in values is nil, an empty
// string, an empty slice or array, or an empty map.
func HasEmptyValues(values map[string]any) bool {
	for _, v := range values {
		if isEmpty(v) {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.Len() == 0
	case reflect.Slice, reflect.Map:
		return rv.IsNil() || rv.Len() == 0
	case reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// SubsequentSubstring returns the part of s after the first delim. It
// returns "" when delim does not occur or is the last character.
func SubsequentSubstring(s string, delim rune) string {
	_, after, found := strings.Cut(s, string(delim))
	if !found {
		return ""
	}
	return after
}
