package autofill

import (
	"log"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
)

// Option customises the resolver.
type Option func(*Resolver)

// WithPrefiller attaches a computed-default function to a field key.
func WithPrefiller(fieldKey string, fn Prefiller) Option {
	return func(r *Resolver) {
		if fieldKey == "" || fn == nil {
			return
		}
		if r.prefillers == nil {
			r.prefillers = make(map[string]Prefiller)
		}
		r.prefillers[fieldKey] = fn
	}
}

// WithPrefillers attaches computed-default functions keyed by field.
func WithPrefillers(prefillers map[string]Prefiller) Option {
	return func(r *Resolver) {
		for key, fn := range prefillers {
			WithPrefiller(key, fn)(r)
		}
	}
}

// WithLogger overrides the logger used to report prefiller failures.
func WithLogger(logger Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Resolver seeds a session's default values from saved autofill and computed
// prefillers. Seeding runs once at session init; it is never re-applied on
// keystrokes, so a field the user clears stays cleared.
type Resolver struct {
	prefillers map[string]Prefiller
	logger     Logger
}

// NewResolver constructs a resolver applying the provided options.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{logger: log.Default()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

// Seed walks the field-bearing blocks (phantom fields included) in schema
// order and produces the default value set. Per field the priority is:
// an existing non-empty session value wins over everything, autofill wins
// over the prefiller, the prefiller wins over leaving the field blank.
// Session values are never copied into the result; callers overlay them via
// values.Merge so live edits always win downstream.
func (r *Resolver) Seed(blocks []schema.Block, session, saved values.FormValues) values.FormValues {
	seeded := make(values.FormValues)
	seen := make(map[string]struct{})

	for _, block := range blocks {
		if block.Field == nil {
			continue
		}
		field := *block.Field
		if _, dup := seen[field.Field]; dup {
			continue
		}
		seen[field.Field] = struct{}{}

		if !values.IsEmpty(field, session[field.Field]) {
			continue
		}

		if stored, ok := saved[field.Field]; ok {
			coerced := values.Coerce(field, stored)
			if !values.IsEmpty(field, coerced) {
				seeded[field.Field] = coerced
				continue
			}
		}

		if computed, ok := r.prefill(field); ok {
			seeded[field.Field] = computed
		}
	}

	return seeded
}

// prefill invokes the field's prefiller, isolating errors and panics so one
// bad prefiller cannot abort seeding of the remaining fields.
func (r *Resolver) prefill(field schema.FieldDefinition) (result string, ok bool) {
	fn, exists := r.prefillers[field.Field]
	if !exists {
		return "", false
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			r.logger.Printf("autofill: prefiller for %q panicked: %v", field.Field, recovered)
			result, ok = "", false
		}
	}()

	raw, err := fn()
	if err != nil {
		r.logger.Printf("autofill: prefiller for %q failed: %v", field.Field, err)
		return "", false
	}

	coerced := values.Coerce(field, raw)
	if values.IsEmpty(field, coerced) {
		return "", false
	}
	return coerced, true
}
