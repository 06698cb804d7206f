// Package preview derives positional overlay data for an external document
// renderer. It owns no state: the projection is recomputed from the schema
// and the current values whenever either changes, and is never a source of
// truth. The engine hands over coordinates and values only, never pixels.
package preview

import (
	"sort"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
)

// OverlayItem places one field's current value on the source document.
// Selected reflects whichever field key is focused in the filler UI.
type OverlayItem struct {
	Field    string  `json:"field"`
	Value    string  `json:"value"`
	Page     int     `json:"page"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"w"`
	Height   float64 `json:"h"`
	Selected bool    `json:"selected"`
}

// Project maps every positioned field to its overlay item, grouped by page.
// Phantom fields never appear; repeated field keys contribute only their
// first occurrence in schema order. Items within a page keep schema order.
func Project(form schema.FormSchema, effective values.FormValues, selectedField string) map[int][]OverlayItem {
	pages := make(map[int][]OverlayItem)
	seen := make(map[string]struct{})

	for _, block := range form.FieldBlocks() {
		if block.Kind == schema.BlockPhantomField || block.Field.Position == nil {
			continue
		}
		field := *block.Field
		if _, dup := seen[field.Field]; dup {
			continue
		}
		seen[field.Field] = struct{}{}

		pos := *field.Position
		pages[pos.Page] = append(pages[pos.Page], OverlayItem{
			Field:    field.Field,
			Value:    effective[field.Field],
			Page:     pos.Page,
			X:        pos.X,
			Y:        pos.Y,
			Width:    pos.Width,
			Height:   pos.Height,
			Selected: field.Field == selectedField && selectedField != "",
		})
	}

	return pages
}

// Pages returns the page numbers present in a projection, sorted ascending.
func Pages(projection map[int][]OverlayItem) []int {
	out := make([]int, 0, len(projection))
	for page := range projection {
		out = append(out, page)
	}
	sort.Ints(out)
	return out
}
