package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"gopkg.in/yaml.v3"
)

var (
	headerPolicy    = bluemonday.StrictPolicy()
	paragraphPolicy = bluemonday.UGCPolicy()
)

// Parse decodes a single form schema document from JSON or YAML bytes,
// sanitises display text, and validates the result. Display blocks may carry
// markup in paragraphs (UGC-sanitised); headers are stripped to plain text.
func Parse(data []byte) (FormSchema, error) {
	var s FormSchema
	if err := yaml.Unmarshal(data, &s); err != nil {
		if jsonErr := json.Unmarshal(data, &s); jsonErr != nil {
			return FormSchema{}, fmt.Errorf("schema: parse document: %w", err)
		}
	}

	for i := range s.Blocks {
		block := &s.Blocks[i]
		switch block.Kind {
		case BlockHeader:
			block.Text = strings.TrimSpace(headerPolicy.Sanitize(block.Text))
		case BlockParagraph:
			block.Text = strings.TrimSpace(paragraphPolicy.Sanitize(block.Text))
		}
	}

	if err := Validate(s); err != nil {
		return FormSchema{}, err
	}
	return s, nil
}

// LoadFS walks fsys and parses every JSON/YAML schema document found. The
// result is keyed by form name; duplicate names are a load error so callers
// never depend on walk order.
func LoadFS(fsys fs.FS) (map[string]FormSchema, error) {
	forms := make(map[string]FormSchema)
	if fsys == nil {
		return forms, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		form, err := Parse(data)
		if err != nil {
			return fmt.Errorf("schema: file %s: %w", path, err)
		}
		if _, exists := forms[form.Name]; exists {
			return fmt.Errorf("schema: duplicate form %q (file %s)", form.Name, path)
		}
		forms[form.Name] = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
