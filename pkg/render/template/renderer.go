// Package template defines the seam display-text interpolation renders
// through. Paragraph blocks in legal forms routinely reference field values
// ("I, {{ applicant_name }}, agree ..."); the engine resolves those
// references against the effective value set before handing text to the UI.
package template

import (
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
)

// Renderer renders inline template content against a data context.
type Renderer interface {
	RenderString(content string, data map[string]any) (string, error)
}

// HasPlaceholders reports whether text contains template syntax worth
// rendering.
func HasPlaceholders(text string) bool {
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '{' && (text[i+1] == '{' || text[i+1] == '%') {
			return true
		}
	}
	return false
}

// Interpolate renders every display block's text against the effective
// values, returning a new slice. Blocks without placeholders pass through
// untouched; a render failure keeps the raw text and reports the first error
// so a bad template never blanks a paragraph.
func Interpolate(renderer Renderer, blocks []schema.Block, effective values.FormValues) ([]schema.Block, error) {
	if renderer == nil {
		return blocks, nil
	}

	data := make(map[string]any, len(effective))
	for key, value := range effective {
		data[key] = value
	}

	out := make([]schema.Block, len(blocks))
	copy(out, blocks)

	var firstErr error
	for i := range out {
		if !out[i].Display() || !HasPlaceholders(out[i].Text) {
			continue
		}
		rendered, err := renderer.RenderString(out[i].Text, data)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out[i].Text = rendered
	}
	return out, firstErr
}
