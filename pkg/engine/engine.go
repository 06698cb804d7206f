// Package engine wires the form-fill pipeline together: schema fetch and
// caching, autofill seeding, per-session workflow coordination, and the
// collaborator contracts the engine consumes. It applies sensible defaults
// while remaining open to dependency injection for advanced callers.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/goliatone/go-formfill/pkg/autofill"
	"github.com/goliatone/go-formfill/pkg/render/template"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

// Provider fetches immutable form schemas plus document display metadata,
// keyed by form name. The backend owns schema storage and versioning.
type Provider interface {
	GetForm(ctx context.Context, name string) (schema.FormSchema, schema.DocumentInfo, error)
}

// Entity is one selectable option for reference-type fields, typically a
// counterpart organization.
type Entity struct {
	ID          string
	DisplayName string
}

// Directory lists the entities reference fields can point at. The engine
// treats the result as an opaque option list.
type Directory interface {
	ListEntities(ctx context.Context) ([]Entity, error)
}

// Logger is the minimal logging seam the engine propagates to its
// components.
type Logger interface {
	Printf(format string, args ...any)
}

// Option customises the engine configuration.
type Option func(*Engine)

// WithProvider injects the schema provider. Required.
func WithProvider(provider Provider) Option {
	return func(e *Engine) {
		e.provider = provider
	}
}

// WithAutofillStore injects the autofill store.
func WithAutofillStore(store autofill.Store) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithSink injects the submission sink.
func WithSink(sink workflow.Sink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithDirectory injects the entity directory used by reference fields.
func WithDirectory(directory Directory) Option {
	return func(e *Engine) {
		e.directory = directory
	}
}

// WithSchemaCache injects a shared schema cache. When omitted the engine
// creates its own.
func WithSchemaCache(cache *SchemaCache) Option {
	return func(e *Engine) {
		if cache != nil {
			e.cache = cache
		}
	}
}

// WithValidator injects a validator built over a custom rule registry.
func WithValidator(validator *validation.Validator) Option {
	return func(e *Engine) {
		if validator != nil {
			e.validator = validator
		}
	}
}

// WithPrefiller attaches a computed-default function to a field key.
func WithPrefiller(fieldKey string, fn autofill.Prefiller) Option {
	return func(e *Engine) {
		if fieldKey == "" || fn == nil {
			return
		}
		if e.prefillers == nil {
			e.prefillers = make(map[string]autofill.Prefiller)
		}
		e.prefillers[fieldKey] = fn
	}
}

// WithTemplateRenderer enables paragraph interpolation through the given
// renderer.
func WithTemplateRenderer(renderer template.Renderer) Option {
	return func(e *Engine) {
		e.templates = renderer
	}
}

// WithLogger overrides the default standard-library logger.
func WithLogger(logger Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Engine is the long-lived entry point a host UI constructs once and opens
// per-form sessions from.
type Engine struct {
	provider   Provider
	store      autofill.Store
	sink       workflow.Sink
	directory  Directory
	cache      *SchemaCache
	validator  *validation.Validator
	templates  template.Renderer
	prefillers map[string]autofill.Prefiller
	logger     Logger
}

// New constructs an Engine applying any provided options.
func New(options ...Option) *Engine {
	e := &Engine{
		cache:     NewSchemaCache(),
		validator: validation.New(nil),
		logger:    log.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Load fetches a form schema through the cache, validating it on a cache
// miss. Schema errors are non-recoverable without a re-fetch; the failed
// entry is never cached.
func (e *Engine) Load(ctx context.Context, formName string) (Entry, error) {
	if e.provider == nil {
		return Entry{}, errors.New("engine: schema provider is required")
	}
	if formName == "" {
		return Entry{}, errors.New("engine: form name is required")
	}

	if entry, ok := e.cache.Get(formName); ok {
		return entry, nil
	}

	form, doc, err := e.provider.GetForm(ctx, formName)
	if err != nil {
		return Entry{}, fmt.Errorf("engine: load form %q: %w", formName, err)
	}
	if err := schema.Validate(form); err != nil {
		return Entry{}, fmt.Errorf("engine: load form %q: %w", formName, err)
	}

	entry := Entry{Form: form, Document: doc}
	e.cache.Put(entry)
	return entry, nil
}

// Invalidate drops the cached schema for a form. Pass the version to guard
// against evicting a newer fetch, or the empty string to drop
// unconditionally.
func (e *Engine) Invalidate(formName, version string) {
	e.cache.Invalidate(formName, version)
}

// Open loads the form and starts a fill-out session for the acting party:
// the returned coordinator is seeded from the autofill store and ready to
// render.
func (e *Engine) Open(ctx context.Context, formName, actor string) (*workflow.Coordinator, schema.DocumentInfo, error) {
	entry, err := e.Load(ctx, formName)
	if err != nil {
		return nil, schema.DocumentInfo{}, err
	}

	resolver := autofill.NewResolver(
		autofill.WithPrefillers(e.prefillers),
		autofill.WithLogger(e.logger),
	)

	coordinator := workflow.New(entry.Form, actor,
		workflow.WithSink(e.sink),
		workflow.WithAutofillStore(e.store),
		workflow.WithResolver(resolver),
		workflow.WithValidator(e.validator),
		workflow.WithLogger(e.logger),
	)
	if err := coordinator.Start(ctx); err != nil {
		return nil, schema.DocumentInfo{}, fmt.Errorf("engine: start session for %q: %w", formName, err)
	}
	return coordinator, entry.Document, nil
}

// RenderableBlocks returns the actor-visible blocks with paragraph
// placeholders resolved against the session's effective values. Without a
// template renderer the blocks pass through untouched; a template failure
// keeps the raw text and is logged, never fatal.
func (e *Engine) RenderableBlocks(c *workflow.Coordinator) []schema.Block {
	blocks := c.RenderableBlocks()
	rendered, err := template.Interpolate(e.templates, blocks, c.EffectiveValues())
	if err != nil {
		e.logger.Printf("engine: interpolate display text for %q: %v", c.Form().Name, err)
	}
	return rendered
}

// ReferenceOptions resolves the option list for reference-type fields from
// the entity directory.
func (e *Engine) ReferenceOptions(ctx context.Context) ([]schema.SelectOption, error) {
	if e.directory == nil {
		return nil, nil
	}
	entities, err := e.directory.ListEntities(ctx)
	if err != nil {
		return nil, fmt.Errorf("engine: list entities: %w", err)
	}
	options := make([]schema.SelectOption, 0, len(entities))
	for _, entity := range entities {
		options = append(options, schema.SelectOption{Value: entity.ID, Label: entity.DisplayName})
	}
	return options, nil
}
