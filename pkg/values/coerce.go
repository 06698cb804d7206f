package values

import (
	"strconv"

	"github.com/goliatone/go-formfill/pkg/schema"
)

// SignatureTrue is the stored sentinel for a completed signature. Anything
// else, including the empty string, reads as unsigned.
const SignatureTrue = "true"

// Coerce normalizes a raw value to the canonical stored form for the field's
// type. Coercion is idempotent: applying it twice yields the same string. It
// runs on every keystroke, not only at submit time, so a number field never
// holds stray characters even transiently.
func Coerce(field schema.FieldDefinition, raw string) string {
	switch field.Type {
	case schema.FieldTypeNumber:
		// Keep digits and at most one decimal separator: "12a.3.4" -> "12.34".
		return keepNumeric(raw)
	case schema.FieldTypeDate:
		// Dates live as epoch-millisecond integers serialized to string.
		if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return raw
		}
		return keepDigits(raw)
	case schema.FieldTypeSignature:
		if raw == SignatureTrue {
			return SignatureTrue
		}
		return "false"
	case schema.FieldTypeText, schema.FieldTypeSelect, schema.FieldTypeTime, schema.FieldTypeReference:
		return raw
	default:
		return raw
	}
}

// IsEmpty is the type-aware emptiness predicate that gates whether autofill
// or a prefiller may populate a field. A date counts as empty unless it is a
// positive timestamp; a signature unless it is exactly the true sentinel;
// everything else unless it is a non-empty string.
func IsEmpty(field schema.FieldDefinition, value string) bool {
	switch field.Type {
	case schema.FieldTypeDate:
		ts, err := strconv.ParseInt(value, 10, 64)
		return err != nil || ts <= 0
	case schema.FieldTypeSignature:
		return value != SignatureTrue
	default:
		return value == ""
	}
}
