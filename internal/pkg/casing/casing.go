// Package casing converts JSON object keys between snake_case and camelCase.
package casing

import (
	"strings"
	"unicode"
)

// Style is a key naming convention.
type Style int

const (
	Camel Style = iota
	Snake
)

// ToSnake converts "bundleUrl" to "bundle_url". Existing underscores are kept, never doubled.
func ToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	prevUnderscore := false
	for _, r := range s {
		if unicode.IsUpper(r) {
			if !prevUnderscore {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevUnderscore = false
			continue
		}
		if r == '_' && prevUnderscore {
			continue
		}
		b.WriteRune(r)
		prevUnderscore = r == '_'
	}
	return b.String()
}

// ToCamel converts "bundle_url" to "bundleUrl". Only an underscore followed by a
// lowercase ASCII letter is folded; other underscores are left in place.
func ToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '_' && i+1 < len(s) && s[i+1] >= 'a' && s[i+1] <= 'z' {
			b.WriteByte(s[i+1] - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// TransformKeys rewrites every object key in a decoded JSON value, recursively.
// Values that are not maps or slices are returned as is.
func TransformKeys(v any, style Style) any {
	convert := ToCamel
	if style == Snake {
		convert = ToSnake
	}
	return transform(v, convert)
}

func transform(v any, convert func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[convert(k)] = transform(val, convert)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = transform(val, convert)
		}
		return out
	default:
		return v
	}
}
