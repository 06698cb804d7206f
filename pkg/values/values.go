// Package values holds the serialized value and error maps shared by every
// stage of a fill-out, plus the per-type coercion rules that keep them in
// canonical form.
package values

import (
	"fmt"
	"strings"
)

// FormValues maps a field key to its string-serialized value. Every value is
// stored in serialized form, even for numeric/date/boolean fields, so the
// autofill store stays format-agnostic.
type FormValues map[string]string

// FormErrors maps a field key to a human-readable error message. An absent
// key means the field has no error.
type FormErrors map[string]string

// Merge returns a new map with overlay applied on top of base. Neither input
// is mutated.
func Merge(base, overlay FormValues) FormValues {
	out := make(FormValues, len(base)+len(overlay))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of vals.
func Clone(vals FormValues) FormValues {
	out := make(FormValues, len(vals))
	for k, v := range vals {
		out[k] = v
	}
	return out
}

// HasErrors reports whether any entry carries a non-empty message.
func (e FormErrors) HasErrors() bool {
	for _, msg := range e {
		if msg != "" {
			return true
		}
	}
	return false
}

// Stringify converts an arbitrary input to its stored string form. Nil maps
// to the empty string; everything else goes through fmt.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func keepNumeric(raw string) string {
	var b strings.Builder
	dotSeen := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' && !dotSeen:
			dotSeen = true
			b.WriteRune(r)
		}
	}
	return b.String()
}

func keepDigits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
