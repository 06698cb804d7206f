package schema

import "sort"

// FieldType enumerates the supported data-capture kinds. Every per-type
// concern (coercion, emptiness, prompting) switches exhaustively on this enum.
type FieldType string

const (
	FieldTypeText      FieldType = "text"
	FieldTypeNumber    FieldType = "number"
	FieldTypeDate      FieldType = "date"
	FieldTypeTime      FieldType = "time"
	FieldTypeSelect    FieldType = "select"
	FieldTypeSignature FieldType = "signature"
	FieldTypeReference FieldType = "reference"
)

// FieldSource distinguishes values collected from a human from values derived
// elsewhere. Computed fields are display-only and never validated locally.
type FieldSource string

const (
	SourceManual   FieldSource = "manual"
	SourceComputed FieldSource = "computed"
)

// BlockKind discriminates the block union. Header and paragraph blocks carry
// display text only; field and phantom-field blocks carry a FieldDefinition.
type BlockKind string

const (
	BlockHeader       BlockKind = "header"
	BlockParagraph    BlockKind = "paragraph"
	BlockField        BlockKind = "field"
	BlockPhantomField BlockKind = "phantom_field"
)

const (
	ValidationRuleRequired  = "required"
	ValidationRuleMin       = "min"
	ValidationRuleMax       = "max"
	ValidationRuleMinLength = "minLength"
	ValidationRuleMaxLength = "maxLength"
	ValidationRulePattern   = "pattern"
	ValidationRuleEmail     = "email"
	ValidationRuleOneOf     = "oneOf"
)

// ValidationRule is a single declarative constraint attached to a field. Use
// the ValidationRule* constants for the canonical kinds. Numeric bounds and
// length limits encode their threshold in Params["value"]; pattern rules keep
// the original expression in Params["pattern"]; oneOf rules keep a
// comma-separated list in Params["values"].
type ValidationRule struct {
	Kind   string            `json:"kind" yaml:"kind"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// Position locates a field on the source document. Coordinates are expressed
// in the document's own unit space; the engine never draws pixels, it only
// hands these through to the preview collaborator.
type Position struct {
	Page   int     `json:"page" yaml:"page"`
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"w" yaml:"w"`
	Height float64 `json:"h" yaml:"h"`
}

// SelectOption is a single choice for select fields. Reference fields get
// their options from the entity directory instead.
type SelectOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// FieldDefinition is the unit of data capture. Field is the stable key used
// everywhere values are looked up; it is unique within a schema.
type FieldDefinition struct {
	Field          string           `json:"field" yaml:"field"`
	Label          string           `json:"label,omitempty" yaml:"label,omitempty"`
	Type           FieldType        `json:"type" yaml:"type"`
	Section        string           `json:"section,omitempty" yaml:"section,omitempty"`
	SigningPartyID string           `json:"signing_party_id,omitempty" yaml:"signing_party_id,omitempty"`
	Source         FieldSource      `json:"source,omitempty" yaml:"source,omitempty"`
	Options        []SelectOption   `json:"options,omitempty" yaml:"options,omitempty"`
	Validations    []ValidationRule `json:"validations,omitempty" yaml:"validations,omitempty"`
	Position       *Position        `json:"position,omitempty" yaml:"position,omitempty"`
}

// Manual reports whether the field collects its value from a human.
func (f FieldDefinition) Manual() bool {
	return f.Source == SourceManual || f.Source == ""
}

// Block is one ordered unit of form layout. Exactly one of Text or Field is
// meaningful depending on Kind.
type Block struct {
	Kind           BlockKind        `json:"kind" yaml:"kind"`
	Order          int              `json:"order" yaml:"order"`
	SigningPartyID string           `json:"signing_party_id,omitempty" yaml:"signing_party_id,omitempty"`
	Text           string           `json:"text,omitempty" yaml:"text,omitempty"`
	Field          *FieldDefinition `json:"field,omitempty" yaml:"field,omitempty"`
}

// Display reports whether the block carries display text only.
func (b Block) Display() bool {
	return b.Kind == BlockHeader || b.Kind == BlockParagraph
}

// RoleInitiatorSupplied marks a signing party whose identity is not yet known
// and whose contact details the initiator must supply before e-sign
// initiation.
const RoleInitiatorSupplied = "initiator-supplied"

// SigningParty is an actor other than the initiator whose signature the form
// requires. RequiredContactFields lists the minimal data the initiator must
// provide to invite the party when its identity is initiator-supplied.
type SigningParty struct {
	ID                    string            `json:"id" yaml:"id"`
	Role                  string            `json:"role,omitempty" yaml:"role,omitempty"`
	RequiredContactFields []FieldDefinition `json:"required_contact_fields,omitempty" yaml:"required_contact_fields,omitempty"`
}

// DocumentInfo carries display metadata about the source document a schema
// was derived from (the PDF the preview collaborator renders).
type DocumentInfo struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	URL  string `json:"url,omitempty" yaml:"url,omitempty"`
}

// FormSchema describes one form, identified by Name plus Version. Immutable
// once loaded for the lifetime of a fill-out session.
type FormSchema struct {
	Name           string         `json:"name" yaml:"name"`
	Version        string         `json:"version" yaml:"version"`
	Blocks         []Block        `json:"blocks" yaml:"blocks"`
	SigningParties []SigningParty `json:"signing_parties,omitempty" yaml:"signing_parties,omitempty"`
}

// Ordered returns the blocks sorted by their order key. The sort is stable so
// blocks sharing an order keep their declaration order.
func (s FormSchema) Ordered() []Block {
	out := make([]Block, len(s.Blocks))
	copy(out, s.Blocks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// FieldBlocks returns the field-bearing blocks (field and phantom_field) in
// schema order.
func (s FormSchema) FieldBlocks() []Block {
	var out []Block
	for _, block := range s.Ordered() {
		if block.Field != nil {
			out = append(out, block)
		}
	}
	return out
}

// Fields returns every field definition in schema order, first occurrence
// only when a key repeats across blocks.
func (s FormSchema) Fields() []FieldDefinition {
	seen := make(map[string]struct{})
	var out []FieldDefinition
	for _, block := range s.FieldBlocks() {
		if _, dup := seen[block.Field.Field]; dup {
			continue
		}
		seen[block.Field.Field] = struct{}{}
		out = append(out, *block.Field)
	}
	return out
}

// FieldByKey looks up a field definition by its stable key, honouring the
// first-occurrence rule for repeated keys.
func (s FormSchema) FieldByKey(key string) (FieldDefinition, bool) {
	for _, block := range s.FieldBlocks() {
		if block.Field.Field == key {
			return *block.Field, true
		}
	}
	return FieldDefinition{}, false
}

// Party looks up a signing party by id.
func (s FormSchema) Party(id string) (SigningParty, bool) {
	for _, party := range s.SigningParties {
		if party.ID == id {
			return party, true
		}
	}
	return SigningParty{}, false
}
