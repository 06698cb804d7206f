package workflow

import (
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/values"
)

// ContactForm is the secondary sub-form an e-sign submission opens when the
// schema lists signing parties whose identity the initiator must supply. It
// requests exactly the parties' required contact fields and never reuses the
// main field set.
type ContactForm struct {
	actor   string
	parties []schema.SigningParty
	fields  []schema.FieldDefinition
	session *session.Session
}

func newContactForm(actor string, parties []schema.SigningParty, validator *validation.Validator) *ContactForm {
	var fields []schema.FieldDefinition
	for _, party := range parties {
		for _, contact := range party.RequiredContactFields {
			field := contact
			// Contact fields are always the initiator's to fill and always
			// mandatory; the invite cannot be sent without them.
			field.SigningPartyID = actor
			field.Source = schema.SourceManual
			if !hasRule(field.Validations, schema.ValidationRuleRequired) {
				field.Validations = append(field.Validations, schema.ValidationRule{Kind: schema.ValidationRuleRequired})
			}
			fields = append(fields, field)
		}
	}
	return &ContactForm{
		actor:   actor,
		parties: parties,
		fields:  fields,
		session: session.New(fields, validator),
	}
}

func hasRule(rules []schema.ValidationRule, kind string) bool {
	for _, rule := range rules {
		if rule.Kind == kind {
			return true
		}
	}
	return false
}

// Parties returns the unresolved signing parties this form collects contact
// details for.
func (f *ContactForm) Parties() []schema.SigningParty {
	return f.parties
}

// Fields returns the contact field definitions in party order.
func (f *ContactForm) Fields() []schema.FieldDefinition {
	return f.fields
}

// SetValue stores a contact value, coerced for the field's type.
func (f *ContactForm) SetValue(field string, value any) {
	for _, def := range f.fields {
		if def.Field == field {
			f.session.SetValue(field, values.Coerce(def, values.Stringify(value)))
			return
		}
	}
	f.session.SetValue(field, value)
}

// Values returns the contact values collected so far.
func (f *ContactForm) Values() values.FormValues {
	return f.session.Values()
}

// Errors returns the contact form's current validation errors.
func (f *ContactForm) Errors() values.FormErrors {
	return f.session.Errors()
}

// Validate runs every contact field's rules and returns the error map. The
// e-sign submission stays blocked until this comes back empty.
func (f *ContactForm) Validate() values.FormErrors {
	return f.session.Validate(f.fields, f.actor, nil)
}
