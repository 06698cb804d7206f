// Package session holds the mutable in-memory state for one active fill-out:
// the current values, the current errors, and the operations that mutate
// them. A session is single-writer; it is only ever touched from the host
// UI's event callbacks, so it carries no locking. Multi-party collaboration
// happens through separate sessions bridged by the backend, never through
// shared in-memory state.
package session

import (
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/values"
)

// Session tracks the values and errors of one fill-out.
type Session struct {
	fields    map[string]schema.FieldDefinition
	vals      values.FormValues
	errs      values.FormErrors
	validator *validation.Validator
}

// New constructs a session over the given field definitions. When a key
// repeats, the first definition wins, matching the schema's first-occurrence
// rule. Pass a nil validator to use the canonical rules.
func New(fields []schema.FieldDefinition, validator *validation.Validator) *Session {
	index := make(map[string]schema.FieldDefinition, len(fields))
	for _, field := range fields {
		if _, exists := index[field.Field]; exists {
			continue
		}
		index[field.Field] = field
	}
	if validator == nil {
		validator = validation.New(nil)
	}
	return &Session{
		fields:    index,
		vals:      make(values.FormValues),
		errs:      make(values.FormErrors),
		validator: validator,
	}
}

// Values returns the live value map. Callers must not mutate it directly;
// use SetValue/SetValues so stringification stays consistent.
func (s *Session) Values() values.FormValues {
	return s.vals
}

// Errors returns the live error map.
func (s *Session) Errors() values.FormErrors {
	return s.errs
}

// SetValue stores the string form of value under the field key. Non-string
// inputs are stringified; coercion is the caller's concern so a session can
// also hold raw values mid-edit.
func (s *Session) SetValue(field string, value any) {
	s.vals[field] = values.Stringify(value)
}

// SetValues bulk-merges partial into the session, applying the same
// stringification rule as SetValue.
func (s *Session) SetValues(partial map[string]any) {
	for field, value := range partial {
		s.SetValue(field, value)
	}
}

// InitializeValues merges defaults like SetValues but silently skips any
// field whose current value is already non-empty. This protects user edits
// from being clobbered by late-arriving defaults, for example after an async
// resume parse completes.
func (s *Session) InitializeValues(defaults map[string]any) {
	for field, value := range defaults {
		if !s.empty(field) {
			continue
		}
		s.SetValue(field, value)
	}
}

// ValidateField runs the field's rules against its live value merged with
// autofill and updates exactly that field's entry in the error map, clearing
// it on success.
func (s *Session) ValidateField(field schema.FieldDefinition, actor string, autofill values.FormValues) string {
	msg := s.validator.Validate(field, actor, s.vals, autofill)
	if msg == "" {
		delete(s.errs, field.Field)
		return ""
	}
	s.errs[field.Field] = msg
	return msg
}

// Validate runs validation for every eligible field, replaces the entire
// error map atomically, and returns it so the caller can decide whether to
// block submission.
func (s *Session) Validate(fields []schema.FieldDefinition, actor string, autofill values.FormValues) values.FormErrors {
	next := make(values.FormErrors)
	for _, field := range fields {
		if msg := s.validator.Validate(field, actor, s.vals, autofill); msg != "" {
			next[field.Field] = msg
		}
	}
	s.errs = next
	return next
}

// ResetErrors clears the error map without touching values. Used when the
// host switches forms.
func (s *Session) ResetErrors() {
	s.errs = make(values.FormErrors)
}

func (s *Session) empty(field string) bool {
	def, known := s.fields[field]
	if !known {
		return s.vals[field] == ""
	}
	return values.IsEmpty(def, s.vals[field])
}
