package workflow

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/goliatone/go-formfill/pkg/autofill"
	"github.com/goliatone/go-formfill/pkg/preview"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/session"
	"github.com/goliatone/go-formfill/pkg/validation"
	"github.com/goliatone/go-formfill/pkg/values"
)

// Option customises the coordinator configuration.
type Option func(*Coordinator)

// WithSink injects the submission sink. Required before Submit is called.
func WithSink(sink Sink) Option {
	return func(c *Coordinator) {
		c.sink = sink
	}
}

// WithAutofillStore injects the autofill store. When omitted the session
// starts blank and submissions skip the autofill baseline write.
func WithAutofillStore(store autofill.Store) Option {
	return func(c *Coordinator) {
		c.store = store
	}
}

// WithResolver injects a custom autofill resolver, typically to attach
// prefillers.
func WithResolver(resolver *autofill.Resolver) Option {
	return func(c *Coordinator) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithValidator injects a custom validator, typically to extend the rule
// registry.
func WithValidator(validator *validation.Validator) Option {
	return func(c *Coordinator) {
		if validator != nil {
			c.validator = validator
		}
	}
}

// WithLogger overrides the logger used for persistence and submission
// failures.
func WithLogger(logger Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Coordinator drives one actor's fill-out of one form. It owns the filler
// session, the seeded autofill base, and the submission state machine.
// Like the session it wraps, a coordinator is single-writer: it is driven
// from UI callbacks on one goroutine.
type Coordinator struct {
	form      schema.FormSchema
	actor     string
	sink      Sink
	store     autofill.Store
	resolver  *autofill.Resolver
	validator *validation.Validator
	logger    Logger

	session  *session.Session
	seeded   values.FormValues
	contacts *ContactForm
	selected string
	state    State
	busy     bool
}

// New constructs a coordinator for the given form and acting party. Call
// Start to seed autofill before rendering.
func New(form schema.FormSchema, actor string, options ...Option) *Coordinator {
	c := &Coordinator{
		form:      form,
		actor:     actor,
		resolver:  autofill.NewResolver(),
		validator: validation.New(nil),
		logger:    log.Default(),
		seeded:    make(values.FormValues),
		state:     StateEditing,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	c.session = session.New(form.Fields(), c.validator)
	return c
}

// Start seeds the session's default values from the autofill store and the
// configured prefillers. Seeding happens exactly once per session; a store
// read failure degrades to an unseeded session rather than aborting.
func (c *Coordinator) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	saved := values.FormValues{}
	if c.store != nil {
		loaded, err := c.store.GetAutofill(ctx, c.form.Name)
		if err != nil {
			c.logger.Printf("workflow: load autofill for %q: %v", c.form.Name, err)
		} else {
			saved = loaded
		}
	}

	c.seeded = c.resolver.Seed(c.form.FieldBlocks(), c.session.Values(), saved)
	return nil
}

// State reports the coordinator's current position in the submission flow.
func (c *Coordinator) State() State {
	return c.state
}

// Busy reports whether a submission is in flight.
func (c *Coordinator) Busy() bool {
	return c.busy
}

// Actor returns the signing party this coordinator renders and validates for.
func (c *Coordinator) Actor() string {
	return c.actor
}

// Form returns the immutable schema the coordinator was built over.
func (c *Coordinator) Form() schema.FormSchema {
	return c.form
}

// RenderableBlocks returns the blocks the current actor may see, in schema
// order: display blocks always, field blocks only when the field is the
// actor's own and manually sourced. Computed fields are never rendered as
// editable inputs. When a field key appears in more than one block only the
// first occurrence survives.
func (c *Coordinator) RenderableBlocks() []schema.Block {
	seen := make(map[string]struct{})
	var out []schema.Block
	for _, block := range c.form.Ordered() {
		if block.Display() {
			out = append(out, block)
			continue
		}
		if block.Field == nil {
			continue
		}
		field := *block.Field
		if _, dup := seen[field.Field]; dup {
			continue
		}
		seen[field.Field] = struct{}{}
		if !field.Manual() || field.SigningPartyID != c.actor {
			continue
		}
		out = append(out, block)
	}
	return out
}

// EffectiveValues overlays the live session edits on the seeded autofill
// base. It is recomputed on every call so downstream consumers never see a
// stale merge.
func (c *Coordinator) EffectiveValues() values.FormValues {
	return values.Merge(c.seeded, c.session.Values())
}

// EffectiveErrors returns the current per-field error messages.
func (c *Coordinator) EffectiveErrors() values.FormErrors {
	return c.session.Errors()
}

// OnFieldChange coerces and stores a field edit, returning the stored value.
// Coercion runs on every keystroke so a number field never holds stray
// characters even transiently.
func (c *Coordinator) OnFieldChange(fieldKey string, value any) string {
	raw := values.Stringify(value)
	if def, ok := c.form.FieldByKey(fieldKey); ok {
		raw = values.Coerce(def, raw)
	}
	c.session.SetValue(fieldKey, raw)
	if c.state != StateEditing && c.state != StateDone {
		c.state = StateEditing
	}
	return raw
}

// OnFieldBlur validates the single field that just lost focus, updating only
// its entry in the error map.
func (c *Coordinator) OnFieldBlur(fieldKey string) string {
	def, ok := c.form.FieldByKey(fieldKey)
	if !ok {
		return ""
	}
	return c.session.ValidateField(def, c.actor, c.seeded)
}

// SelectField records which field is focused so the preview projection can
// highlight it. Pass the empty string to clear the selection.
func (c *Coordinator) SelectField(fieldKey string) {
	c.selected = fieldKey
}

// InitializeValues merges late-arriving defaults (for example a completed
// resume parse) without clobbering fields the user already edited.
func (c *Coordinator) InitializeValues(defaults map[string]any) {
	c.session.InitializeValues(defaults)
}

// ResetErrors clears validation errors without touching values.
func (c *Coordinator) ResetErrors() {
	c.session.ResetErrors()
}

// PreviewProjection derives the positional overlay for the document preview
// collaborator from the current effective values and focus.
func (c *Coordinator) PreviewProjection() map[int][]preview.OverlayItem {
	return preview.Project(c.form, c.EffectiveValues(), c.selected)
}

// Contacts returns the pending signing-party contact sub-form, or nil when
// no e-sign submission is waiting on contact details.
func (c *Coordinator) Contacts() *ContactForm {
	return c.contacts
}

// Submit runs submit-intent validation and routes to the fill-out or e-sign
// path. On validation errors it returns ErrValidationFailed and the session
// stays editable. An e-sign submit with unresolved initiator-supplied
// signing parties returns ErrContactsRequired until the contact sub-form
// validates; InitiateForm is unreachable before then. Network failures leave
// the session in StateEditing so the user can retry; nothing is lost.
func (c *Coordinator) Submit(ctx context.Context, mode Mode) (Result, error) {
	if c.state == StateDone {
		return Result{}, ErrDone
	}
	if c.busy {
		return Result{}, ErrBusy
	}
	if c.sink == nil {
		return Result{}, fmt.Errorf("workflow: submission sink is required")
	}
	switch mode {
	case ModeManual, ModeEsign:
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	c.busy = true
	defer func() { c.busy = false }()

	c.state = StateValidating
	errs := c.session.Validate(c.form.Fields(), c.actor, c.seeded)
	if errs.HasErrors() {
		// Errors are surfaced through EffectiveErrors; the next field edit
		// settles the session back into editing.
		c.state = StateBlocked
		return Result{}, ErrValidationFailed
	}

	final := c.EffectiveValues()

	// Persist the merged values as the new autofill baseline first, on both
	// paths, so partial progress survives even if the submission fails.
	c.persistAutofill(ctx, final)

	switch mode {
	case ModeManual:
		c.state = StateReadyManual
		return c.dispatch(ctx, final, c.sink.FilloutForm)
	default:
		c.state = StateReadyEsign
		return c.submitEsign(ctx, final)
	}
}

func (c *Coordinator) submitEsign(ctx context.Context, final values.FormValues) (Result, error) {
	unresolved := c.unresolvedParties()
	if len(unresolved) > 0 {
		if c.contacts == nil {
			c.contacts = newContactForm(c.actor, unresolved, c.validator)
			return Result{}, ErrContactsRequired
		}
		if c.contacts.Validate().HasErrors() {
			return Result{}, ErrContactsRequired
		}
		final = values.Merge(final, c.contacts.Values())
	}
	return c.dispatch(ctx, final, c.sink.InitiateForm)
}

func (c *Coordinator) dispatch(ctx context.Context, final values.FormValues, send func(context.Context, Submission) (Result, error)) (Result, error) {
	sub := Submission{
		RequestID: uuid.NewString(),
		FormName:  c.form.Name,
		Version:   c.form.Version,
		Values:    final,
	}

	result, err := send(ctx, sub)
	if err != nil {
		c.logger.Printf("workflow: submit %q: %v", c.form.Name, err)
		c.state = StateEditing
		return Result{}, fmt.Errorf("workflow: submit %q: %w", c.form.Name, err)
	}
	if !result.Success {
		// The sink's message is surfaced verbatim; values stay intact for a
		// retry.
		c.state = StateEditing
		return result, nil
	}

	c.state = StateDone
	return result, nil
}

func (c *Coordinator) persistAutofill(ctx context.Context, final values.FormValues) {
	if c.store == nil {
		return
	}
	if err := c.store.PutAutofill(ctx, c.form.Name, final); err != nil {
		// Non-blocking: the session keeps its in-memory values even when the
		// baseline write fails.
		c.logger.Printf("workflow: persist autofill for %q: %v", c.form.Name, err)
	}
}

func (c *Coordinator) unresolvedParties() []schema.SigningParty {
	var out []schema.SigningParty
	for _, party := range c.form.SigningParties {
		if party.Role == schema.RoleInitiatorSupplied {
			out = append(out, party)
		}
	}
	return out
}
