package validation

import (
	"strings"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
)

// Validator runs a field's declarative rules against its effective value.
// The zero value uses the canonical rule registry.
type Validator struct {
	registry *Registry
}

// New constructs a Validator. Pass nil to use the canonical registry.
func New(registry *Registry) *Validator {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Validator{registry: registry}
}

// Eligible reports whether a field is validated locally for the given actor:
// only the actor's own manually-sourced fields ever are. Computed fields and
// other parties' fields always pass.
func Eligible(field schema.FieldDefinition, actor string) bool {
	return field.SigningPartyID == actor && field.Manual()
}

// Check evaluates every rule attached to the field against value and returns
// the flattened sub-error messages. Unknown rule kinds are reported rather
// than skipped so schema typos surface during development.
func (v *Validator) Check(field schema.FieldDefinition, value string) []string {
	var subErrors []string
	for _, rule := range field.Validations {
		fn, ok := v.registry.lookup(rule.Kind)
		if !ok {
			subErrors = append(subErrors, "has an unknown rule "+rule.Kind)
			continue
		}
		subErrors = append(subErrors, fn(field, value, rule.Params)...)
	}
	return subErrors
}

// Validate runs the field's rules against its effective value, which is the
// session value when present and the autofill value otherwise. Returns the
// composed error message, or the empty string when the field passes or is
// not eligible for the actor.
func (v *Validator) Validate(field schema.FieldDefinition, actor string, vals, autofill values.FormValues) string {
	if !Eligible(field, actor) {
		return ""
	}

	value, ok := vals[field.Field]
	if !ok {
		value = autofill[field.Field]
	}

	subErrors := v.Check(field, value)
	if len(subErrors) == 0 {
		return ""
	}
	return ComposeMessage(field, subErrors)
}

// ComposeMessage joins the validator's sub-errors into the per-field message
// surfaced to the user: "{label}: {joined sub-errors}". Sub-error text is
// passed through untouched.
func ComposeMessage(field schema.FieldDefinition, subErrors []string) string {
	label := field.Label
	if label == "" {
		label = field.Field
	}
	return label + ": " + strings.Join(subErrors, " ")
}
