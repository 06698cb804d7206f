// Package formfill is the top-level facade over the form-fill pipeline:
// schema loading, autofill seeding, per-session validation, and the
// submission workflow. Most callers construct an Engine here and open
// per-form sessions from it; the pkg/ subpackages stay available for
// fine-grained wiring.
package formfill

import (
	"github.com/goliatone/go-formfill/pkg/engine"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

// Engine is the long-lived entry point; open per-form sessions with Open.
type Engine = engine.Engine

// Option configures the engine.
type Option = engine.Option

// Coordinator drives one actor's fill-out of one form.
type Coordinator = workflow.Coordinator

// FormSchema describes one form.
type FormSchema = schema.FormSchema

// FormValues maps field keys to string-serialized values.
type FormValues = values.FormValues

// Submission modes.
const (
	ModeManual = workflow.ModeManual
	ModeEsign  = workflow.ModeEsign
)

// New constructs an Engine. See the engine package for the available options.
func New(options ...Option) *Engine {
	return engine.New(options...)
}

// Re-exported engine options, so simple callers need a single import.
var (
	WithProvider         = engine.WithProvider
	WithAutofillStore    = engine.WithAutofillStore
	WithSink             = engine.WithSink
	WithDirectory        = engine.WithDirectory
	WithValidator        = engine.WithValidator
	WithPrefiller        = engine.WithPrefiller
	WithTemplateRenderer = engine.WithTemplateRenderer
	WithLogger           = engine.WithLogger
)

// ParseSchema decodes, sanitises, and validates a single schema document.
func ParseSchema(data []byte) (FormSchema, error) {
	return schema.Parse(data)
}
