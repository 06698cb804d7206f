package schema

import (
	"strings"
	"testing"
	"testing/fstest"
)

const yamlDoc = `
name: internship-agreement
version: "2"
blocks:
  - kind: header
    order: 0
    text: "<b>Internship</b> Agreement"
  - kind: paragraph
    order: 1
    text: 'The <em>undersigned</em> parties <script>alert(1)</script>agree.'
  - kind: field
    order: 2
    field:
      field: student_name
      label: Student name
      type: text
      source: manual
      validations:
        - kind: required
      position: {page: 1, x: 72, y: 120, w: 180, h: 14}
  - kind: phantom_field
    order: 3
    field:
      field: student_email
      type: text
      source: manual
`

func TestParseYAML(t *testing.T) {
	form, err := Parse([]byte(yamlDoc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if form.Name != "internship-agreement" || form.Version != "2" {
		t.Fatalf("unexpected identity: %q version %q", form.Name, form.Version)
	}
	if len(form.Blocks) != 4 {
		t.Fatalf("expected 4 blocks, got %d", len(form.Blocks))
	}

	if form.Blocks[0].Text != "Internship Agreement" {
		t.Fatalf("header not stripped to plain text: %q", form.Blocks[0].Text)
	}
	if strings.Contains(form.Blocks[1].Text, "script") {
		t.Fatalf("paragraph kept script content: %q", form.Blocks[1].Text)
	}
	if !strings.Contains(form.Blocks[1].Text, "<em>undersigned</em>") {
		t.Fatalf("paragraph lost benign markup: %q", form.Blocks[1].Text)
	}

	field, ok := form.FieldByKey("student_name")
	if !ok || field.Position == nil || field.Position.Page != 1 {
		t.Fatalf("field position not parsed: %+v ok=%v", field, ok)
	}
}

func TestParseJSON(t *testing.T) {
	doc := `{
		"name": "moa",
		"version": "1",
		"blocks": [
			{"kind": "header", "order": 0, "text": "MOA"},
			{"kind": "phantom_field", "order": 1, "field": {"field": "email", "type": "text", "source": "manual"}}
		]
	}`
	form, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if form.Name != "moa" || len(form.Blocks) != 2 {
		t.Fatalf("unexpected form: %+v", form)
	}
}

func TestParseRejectsInvalidSchema(t *testing.T) {
	doc := `{"name": "", "blocks": [{"kind": "header", "text": "x"}]}`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Fatalf("Parse() accepted schema without a name")
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/agreement.yaml": &fstest.MapFile{Data: []byte(yamlDoc)},
		"forms/notes.txt":      &fstest.MapFile{Data: []byte("ignored")},
	}

	forms, err := LoadFS(fsys)
	if err != nil {
		t.Fatalf("LoadFS() error: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("expected 1 form, got %d", len(forms))
	}
	if _, ok := forms["internship-agreement"]; !ok {
		t.Fatalf("missing form by name: %v", forms)
	}
}

func TestLoadFSRejectsDuplicateNames(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": &fstest.MapFile{Data: []byte(yamlDoc)},
		"b.yaml": &fstest.MapFile{Data: []byte(yamlDoc)},
	}
	if _, err := LoadFS(fsys); err == nil || !strings.Contains(err.Error(), "duplicate form") {
		t.Fatalf("LoadFS() = %v, want duplicate form error", err)
	}
}
