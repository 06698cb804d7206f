package engine_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/engine"
	"github.com/goliatone/go-formfill/pkg/render/template/pongo"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/testsupport"
	"github.com/goliatone/go-formfill/pkg/values"
)

// countingProvider wraps StaticProvider and counts backend fetches so tests
// can observe cache behavior.
type countingProvider struct {
	testsupport.StaticProvider
	calls int
}

func (p *countingProvider) GetForm(ctx context.Context, name string) (schema.FormSchema, schema.DocumentInfo, error) {
	p.calls++
	return p.StaticProvider.GetForm(ctx, name)
}

func agreementProvider() *countingProvider {
	form := testsupport.AgreementForm()
	return &countingProvider{
		StaticProvider: testsupport.StaticProvider{
			Forms: map[string]schema.FormSchema{form.Name: form},
			Documents: map[string]schema.DocumentInfo{
				form.Name: {Name: "Internship Agreement", URL: "https://files.example/agreement.pdf"},
			},
		},
	}
}

func TestLoadCachesByName(t *testing.T) {
	provider := agreementProvider()
	e := engine.New(engine.WithProvider(provider))
	ctx := context.Background()

	entry, err := e.Load(ctx, "internship-agreement")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if entry.Document.Name != "Internship Agreement" {
		t.Fatalf("unexpected document: %+v", entry.Document)
	}

	if _, err := e.Load(ctx, "internship-agreement"); err != nil {
		t.Fatalf("second Load() error: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("provider called %d times, want 1", provider.calls)
	}
}

func TestLoadNeverCachesFailures(t *testing.T) {
	provider := agreementProvider()
	broken := schema.FormSchema{Name: "broken"} // no blocks
	provider.Forms["broken"] = broken

	e := engine.New(engine.WithProvider(provider))
	ctx := context.Background()

	if _, err := e.Load(ctx, "broken"); err == nil {
		t.Fatalf("Load() accepted an invalid schema")
	}
	before := provider.calls
	if _, err := e.Load(ctx, "broken"); err == nil {
		t.Fatalf("Load() accepted an invalid schema on retry")
	}
	if provider.calls != before+1 {
		t.Fatalf("failed entry was cached")
	}
}

func TestInvalidateIsVersionGuarded(t *testing.T) {
	provider := agreementProvider()
	e := engine.New(engine.WithProvider(provider))
	ctx := context.Background()

	if _, err := e.Load(ctx, "internship-agreement"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// A mismatched version leaves the newer cached entry alone.
	e.Invalidate("internship-agreement", "1")
	if _, err := e.Load(ctx, "internship-agreement"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if provider.calls != 1 {
		t.Fatalf("version-mismatched Invalidate evicted the entry")
	}

	e.Invalidate("internship-agreement", "3")
	if _, err := e.Load(ctx, "internship-agreement"); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if provider.calls != 2 {
		t.Fatalf("matching Invalidate did not evict: %d calls", provider.calls)
	}
}

func TestOpenSeedsFromStoreAndPrefillers(t *testing.T) {
	provider := agreementProvider()
	store := testsupport.NewMemoryStore()
	store.Seed("internship-agreement", values.FormValues{"weekly_hours": "20"})

	e := engine.New(
		engine.WithProvider(provider),
		engine.WithAutofillStore(store),
		engine.WithSink(testsupport.NewRecordingSink()),
		engine.WithPrefiller("agreement_number", func() (string, error) { return "AGR-001", nil }),
	)

	c, doc, err := e.Open(context.Background(), "internship-agreement", testsupport.PartyInitiator)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if doc.URL == "" {
		t.Fatalf("document metadata missing: %+v", doc)
	}

	effective := c.EffectiveValues()
	if effective["weekly_hours"] != "20" {
		t.Fatalf("stored autofill not seeded: %v", effective)
	}
	if effective["agreement_number"] != "AGR-001" {
		t.Fatalf("prefiller not seeded: %v", effective)
	}
}

func TestRenderableBlocksInterpolatesParagraphs(t *testing.T) {
	provider := agreementProvider()
	e := engine.New(
		engine.WithProvider(provider),
		engine.WithSink(testsupport.NewRecordingSink()),
		engine.WithTemplateRenderer(pongo.New()),
	)

	c, _, err := e.Open(context.Background(), "internship-agreement", testsupport.PartyInitiator)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	c.OnFieldChange("student_name", "Ada Lovelace")

	for _, block := range e.RenderableBlocks(c) {
		if block.Kind != schema.BlockParagraph {
			continue
		}
		if !strings.Contains(block.Text, "Ada Lovelace") {
			t.Fatalf("paragraph not interpolated: %q", block.Text)
		}
		return
	}
	t.Fatalf("no paragraph block rendered")
}

func TestRenderableBlocksWithoutRendererPassesThrough(t *testing.T) {
	provider := agreementProvider()
	e := engine.New(
		engine.WithProvider(provider),
		engine.WithSink(testsupport.NewRecordingSink()),
	)

	c, _, err := e.Open(context.Background(), "internship-agreement", testsupport.PartyInitiator)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	for _, block := range e.RenderableBlocks(c) {
		if block.Kind == schema.BlockParagraph && !strings.Contains(block.Text, "{{") {
			t.Fatalf("placeholders resolved without a renderer: %q", block.Text)
		}
	}
}

func TestReferenceOptions(t *testing.T) {
	directory := &testsupport.StaticDirectory{Entities: []engine.Entity{
		{ID: "org-1", DisplayName: "Acme Corp"},
		{ID: "org-2", DisplayName: "Globex"},
	}}
	e := engine.New(engine.WithDirectory(directory))

	options, err := e.ReferenceOptions(context.Background())
	if err != nil {
		t.Fatalf("ReferenceOptions() error: %v", err)
	}
	want := []schema.SelectOption{
		{Value: "org-1", Label: "Acme Corp"},
		{Value: "org-2", Label: "Globex"},
	}
	if diff := cmp.Diff(want, options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}

	directory.Err = errors.New("ldap down")
	if _, err := e.ReferenceOptions(context.Background()); err == nil {
		t.Fatalf("directory failure not surfaced")
	}
}

func TestReferenceOptionsWithoutDirectory(t *testing.T) {
	e := engine.New()
	options, err := e.ReferenceOptions(context.Background())
	if err != nil || options != nil {
		t.Fatalf("ReferenceOptions() = %v, %v; want nil, nil", options, err)
	}
}
