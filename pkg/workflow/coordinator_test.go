package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/testsupport"
	"github.com/goliatone/go-formfill/pkg/values"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

const actor = testsupport.PartyInitiator

// simpleForm mirrors the canonical two-field scenario: a required text field
// and a number field, both owned by the initiator.
func simpleForm() schema.FormSchema {
	return schema.FormSchema{
		Name:    "simple",
		Version: "1",
		Blocks: []schema.Block{
			{Kind: schema.BlockField, Order: 0, Field: &schema.FieldDefinition{
				Field: "name", Label: "Name", Type: schema.FieldTypeText,
				SigningPartyID: actor, Source: schema.SourceManual,
				Validations: []schema.ValidationRule{{Kind: schema.ValidationRuleRequired}},
				Position:    &schema.Position{Page: 1, X: 10, Y: 10, Width: 100, Height: 12},
			}},
			{Kind: schema.BlockField, Order: 1, Field: &schema.FieldDefinition{
				Field: "amount", Label: "Amount", Type: schema.FieldTypeNumber,
				SigningPartyID: actor, Source: schema.SourceManual,
				Position: &schema.Position{Page: 1, X: 10, Y: 30, Width: 60, Height: 12},
			}},
		},
	}
}

func TestSubmitManualScenario(t *testing.T) {
	sink := testsupport.NewRecordingSink()
	store := testsupport.NewMemoryStore()
	c := workflow.New(simpleForm(), actor,
		workflow.WithSink(sink),
		workflow.WithAutofillStore(store),
	)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if got := c.OnFieldChange("amount", "12a.3.4"); got != "12.34" {
		t.Fatalf("OnFieldChange coerced to %q, want 12.34", got)
	}

	// Name empty: submit must block and never reach the sink.
	_, err := c.Submit(ctx, workflow.ModeManual)
	if !errors.Is(err, workflow.ErrValidationFailed) {
		t.Fatalf("Submit() error = %v, want ErrValidationFailed", err)
	}
	if c.EffectiveErrors()["name"] == "" {
		t.Fatalf("missing name error: %v", c.EffectiveErrors())
	}
	if len(sink.Fillouts)+len(sink.Initiates) != 0 {
		t.Fatalf("sink reached despite validation errors")
	}
	if c.State() != workflow.StateBlocked {
		t.Fatalf("State() = %q, want blocked", c.State())
	}

	// Editing resumes on the next change; the resubmission succeeds.
	c.OnFieldChange("name", "Acme")
	if c.State() != workflow.StateEditing {
		t.Fatalf("State() = %q after edit, want editing", c.State())
	}

	result, err := c.Submit(ctx, workflow.ModeManual)
	if err != nil || !result.Success {
		t.Fatalf("Submit() = %+v, %v", result, err)
	}
	if len(sink.Fillouts) != 1 {
		t.Fatalf("FilloutForm called %d times, want 1", len(sink.Fillouts))
	}

	sub := sink.Fillouts[0]
	want := values.FormValues{"name": "Acme", "amount": "12.34"}
	if diff := cmp.Diff(want, sub.Values); diff != "" {
		t.Fatalf("submission values mismatch (-want +got):\n%s", diff)
	}
	if sub.FormName != "simple" || sub.Version != "1" || sub.RequestID == "" {
		t.Fatalf("unexpected submission envelope: %+v", sub)
	}
	if c.State() != workflow.StateDone {
		t.Fatalf("State() = %q, want done", c.State())
	}

	// The merged values became the new autofill baseline.
	baseline, err := store.GetAutofill(ctx, "simple")
	if err != nil {
		t.Fatalf("GetAutofill() error: %v", err)
	}
	if diff := cmp.Diff(want, baseline); diff != "" {
		t.Fatalf("autofill baseline mismatch (-want +got):\n%s", diff)
	}

	if _, err := c.Submit(ctx, workflow.ModeManual); !errors.Is(err, workflow.ErrDone) {
		t.Fatalf("Submit() after done = %v, want ErrDone", err)
	}
}

func TestSeedingRunsOnceNotReactively(t *testing.T) {
	store := testsupport.NewMemoryStore()
	store.Seed("simple", values.FormValues{"name": "Acme"})

	c := workflow.New(simpleForm(), actor,
		workflow.WithSink(testsupport.NewRecordingSink()),
		workflow.WithAutofillStore(store),
	)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	if got := c.EffectiveValues()["name"]; got != "Acme" {
		t.Fatalf("seeded name = %q, want Acme", got)
	}

	// The user clears the field; the resolver must not re-seed mid-session.
	c.OnFieldChange("name", "")
	if got := c.EffectiveValues()["name"]; got != "" {
		t.Fatalf("cleared field re-seeded to %q", got)
	}
}

func TestSubmitEsignCollectsContactsFirst(t *testing.T) {
	sink := testsupport.NewRecordingSink()
	store := testsupport.NewMemoryStore()
	c := workflow.New(testsupport.AgreementForm(), actor,
		workflow.WithSink(sink),
		workflow.WithAutofillStore(store),
	)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	c.OnFieldChange("student_name", "Ada Lovelace")

	// First e-sign submit: validation passes, but the company party still
	// needs contact details. InitiateForm must be unreachable.
	_, err := c.Submit(ctx, workflow.ModeEsign)
	if !errors.Is(err, workflow.ErrContactsRequired) {
		t.Fatalf("Submit() error = %v, want ErrContactsRequired", err)
	}
	if len(sink.Initiates) != 0 {
		t.Fatalf("InitiateForm reached before contacts resolved")
	}
	contacts := c.Contacts()
	if contacts == nil || len(contacts.Fields()) != 1 {
		t.Fatalf("expected one contact field, got %+v", contacts)
	}

	// Partial progress persisted even though the submission is pending.
	baseline, _ := store.GetAutofill(ctx, "internship-agreement")
	if baseline["student_name"] != "Ada Lovelace" {
		t.Fatalf("autofill baseline missing partial progress: %v", baseline)
	}

	// An invalid contact keeps the gate closed.
	contacts.SetValue("company_email", "not-an-email")
	_, err = c.Submit(ctx, workflow.ModeEsign)
	if !errors.Is(err, workflow.ErrContactsRequired) {
		t.Fatalf("Submit() with bad contact = %v, want ErrContactsRequired", err)
	}
	if contacts.Errors()["company_email"] == "" {
		t.Fatalf("contact error missing: %v", contacts.Errors())
	}
	if len(sink.Initiates) != 0 {
		t.Fatalf("InitiateForm reached with invalid contacts")
	}

	contacts.SetValue("company_email", "legal@acme.example")
	result, err := c.Submit(ctx, workflow.ModeEsign)
	if err != nil || !result.Success {
		t.Fatalf("Submit() = %+v, %v", result, err)
	}
	if len(sink.Initiates) != 1 {
		t.Fatalf("InitiateForm called %d times, want 1", len(sink.Initiates))
	}

	sub := sink.Initiates[0]
	if sub.Values["student_name"] != "Ada Lovelace" || sub.Values["company_email"] != "legal@acme.example" {
		t.Fatalf("combined payload missing values: %v", sub.Values)
	}
	if c.State() != workflow.StateDone {
		t.Fatalf("State() = %q, want done", c.State())
	}
}

func TestSubmitSinkFailureKeepsSessionEditable(t *testing.T) {
	sink := testsupport.NewRecordingSink()
	sink.FilloutErr = errors.New("gateway timeout")
	c := workflow.New(simpleForm(), actor, workflow.WithSink(sink))
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	c.OnFieldChange("name", "Acme")

	_, err := c.Submit(ctx, workflow.ModeManual)
	if err == nil {
		t.Fatalf("Submit() succeeded despite sink failure")
	}
	if c.State() != workflow.StateEditing {
		t.Fatalf("State() = %q, want editing for retry", c.State())
	}
	if c.EffectiveValues()["name"] != "Acme" {
		t.Fatalf("values lost on failure")
	}

	// Retry succeeds once the backend recovers.
	sink.FilloutErr = nil
	if result, err := c.Submit(ctx, workflow.ModeManual); err != nil || !result.Success {
		t.Fatalf("retry Submit() = %+v, %v", result, err)
	}
}

func TestSubmitRejectionSurfacesMessageVerbatim(t *testing.T) {
	sink := testsupport.NewRecordingSink()
	sink.FilloutResult = workflow.Result{Success: false, Message: "duplicate agreement number"}
	c := workflow.New(simpleForm(), actor, workflow.WithSink(sink))
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	c.OnFieldChange("name", "Acme")

	result, err := c.Submit(ctx, workflow.ModeManual)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.Success || result.Message != "duplicate agreement number" {
		t.Fatalf("rejection not surfaced verbatim: %+v", result)
	}
	if c.State() != workflow.StateEditing {
		t.Fatalf("State() = %q, want editing", c.State())
	}
}

func TestSubmitUnknownMode(t *testing.T) {
	c := workflow.New(simpleForm(), actor, workflow.WithSink(testsupport.NewRecordingSink()))
	if _, err := c.Submit(context.Background(), workflow.Mode("fax")); !errors.Is(err, workflow.ErrUnknownMode) {
		t.Fatalf("Submit() = %v, want ErrUnknownMode", err)
	}
}

func TestRenderableBlocks(t *testing.T) {
	c := workflow.New(testsupport.AgreementForm(), actor, workflow.WithSink(testsupport.NewRecordingSink()))

	var fieldKeys []string
	displayCount := 0
	for _, block := range c.RenderableBlocks() {
		if block.Display() {
			displayCount++
			continue
		}
		fieldKeys = append(fieldKeys, block.Field.Field)
	}

	if displayCount != 2 {
		t.Fatalf("expected header+paragraph, got %d display blocks", displayCount)
	}
	want := []string{"student_name", "weekly_hours", "start_date", "student_email"}
	if diff := cmp.Diff(want, fieldKeys); diff != "" {
		t.Fatalf("renderable fields mismatch (-want +got):\n%s", diff)
	}
	// agreement_number is computed, supervisor_signature belongs to the
	// company: neither may render as an editable input for the initiator.
}

func TestRenderableBlocksDedupDeterminism(t *testing.T) {
	form := simpleForm()
	duplicate := schema.Block{Kind: schema.BlockField, Order: 7, Field: &schema.FieldDefinition{
		Field: "name", Label: "Name (later duplicate)", Type: schema.FieldTypeText,
		SigningPartyID: actor, Source: schema.SourceManual,
		Validations: []schema.ValidationRule{{Kind: schema.ValidationRuleRequired}},
		Position:    &schema.Position{Page: 2, X: 0, Y: 0, Width: 1, Height: 1},
	}}
	form.Blocks = append(form.Blocks, duplicate)

	c := workflow.New(form, actor, workflow.WithSink(testsupport.NewRecordingSink()))

	count := 0
	for _, block := range c.RenderableBlocks() {
		if block.Field != nil && block.Field.Field == "name" {
			count++
			if block.Field.Label != "Name" {
				t.Fatalf("later duplicate rendered instead of first occurrence")
			}
		}
	}
	if count != 1 {
		t.Fatalf("field name rendered %d times, want 1", count)
	}
}

func TestAutofillLoadFailureDegradesToUnseeded(t *testing.T) {
	store := testsupport.NewMemoryStore()
	store.GetErr = errors.New("backend down")
	c := workflow.New(simpleForm(), actor,
		workflow.WithSink(testsupport.NewRecordingSink()),
		workflow.WithAutofillStore(store),
	)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() should degrade, got %v", err)
	}
	if len(c.EffectiveValues()) != 0 {
		t.Fatalf("unexpected seeded values: %v", c.EffectiveValues())
	}
}

func TestPersistFailureDoesNotBlockSubmission(t *testing.T) {
	store := testsupport.NewMemoryStore()
	store.PutErr = errors.New("quota exceeded")
	sink := testsupport.NewRecordingSink()
	c := workflow.New(simpleForm(), actor,
		workflow.WithSink(sink),
		workflow.WithAutofillStore(store),
	)
	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	c.OnFieldChange("name", "Acme")

	result, err := c.Submit(ctx, workflow.ModeManual)
	if err != nil || !result.Success {
		t.Fatalf("Submit() = %+v, %v; autofill persistence must be non-blocking", result, err)
	}
	if len(sink.Fillouts) != 1 {
		t.Fatalf("FilloutForm not reached")
	}
}

func TestPreviewProjectionTracksSelection(t *testing.T) {
	c := workflow.New(testsupport.AgreementForm(), actor, workflow.WithSink(testsupport.NewRecordingSink()))
	c.OnFieldChange("student_name", "Ada")
	c.SelectField("student_name")

	projection := c.PreviewProjection()
	found := false
	for _, item := range projection[1] {
		if item.Field == "student_name" {
			found = true
			if item.Value != "Ada" || !item.Selected {
				t.Fatalf("unexpected overlay item: %+v", item)
			}
		}
	}
	if !found {
		t.Fatalf("student_name missing from projection: %v", projection)
	}
}
