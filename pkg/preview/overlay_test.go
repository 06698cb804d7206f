package preview_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formfill/pkg/preview"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/testsupport"
	"github.com/goliatone/go-formfill/pkg/values"
)

func TestProjectGroupsByPage(t *testing.T) {
	form := testsupport.AgreementForm()
	effective := values.FormValues{
		"student_name":         "Ada Lovelace",
		"supervisor_signature": "true",
	}

	projection := preview.Project(form, effective, "student_name")

	if diff := cmp.Diff([]int{1, 2}, preview.Pages(projection)); diff != "" {
		t.Fatalf("Pages mismatch (-want +got):\n%s", diff)
	}

	pageOne := projection[1]
	if len(pageOne) != 4 {
		t.Fatalf("expected 4 positioned fields on page 1, got %d", len(pageOne))
	}
	first := pageOne[0]
	if first.Field != "student_name" || first.Value != "Ada Lovelace" || !first.Selected {
		t.Fatalf("unexpected first item: %+v", first)
	}
	for _, item := range pageOne[1:] {
		if item.Selected {
			t.Fatalf("unselected field marked selected: %+v", item)
		}
	}

	sig := projection[2][0]
	if sig.Field != "supervisor_signature" || sig.Value != "true" || sig.Page != 2 {
		t.Fatalf("unexpected signature item: %+v", sig)
	}
}

func TestProjectExcludesPhantomFields(t *testing.T) {
	form := testsupport.AgreementForm()
	projection := preview.Project(form, values.FormValues{"student_email": "a@b.co"}, "")

	for _, items := range projection {
		for _, item := range items {
			if item.Field == "student_email" {
				t.Fatalf("phantom field appeared in projection")
			}
		}
	}
}

func TestProjectFirstOccurrenceWins(t *testing.T) {
	form := schema.FormSchema{
		Name: "dup",
		Blocks: []schema.Block{
			{Kind: schema.BlockField, Order: 3, Field: &schema.FieldDefinition{
				Field: "ref", Type: schema.FieldTypeText,
				Position: &schema.Position{Page: 1, X: 1, Y: 1, Width: 10, Height: 10},
			}},
			{Kind: schema.BlockField, Order: 7, Field: &schema.FieldDefinition{
				Field: "ref", Type: schema.FieldTypeText,
				Position: &schema.Position{Page: 2, X: 9, Y: 9, Width: 10, Height: 10},
			}},
		},
	}

	projection := preview.Project(form, nil, "")
	if len(projection[1]) != 1 || len(projection[2]) != 0 {
		t.Fatalf("duplicate key projected more than once: %v", projection)
	}
}

func TestProjectEmptySelection(t *testing.T) {
	form := testsupport.AgreementForm()
	projection := preview.Project(form, nil, "")
	for _, items := range projection {
		for _, item := range items {
			if item.Selected {
				t.Fatalf("item selected with empty selection: %+v", item)
			}
		}
	}
}
