package schema

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	errNameMissing   = errors.New("schema: form name is required")
	errNoBlocks      = errors.New("schema: form has no blocks")
	errFieldMissing  = errors.New("schema: field block requires a field definition")
	errFieldKeyEmpty = errors.New("schema: field key is required")
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeText:      {},
	FieldTypeNumber:    {},
	FieldTypeDate:      {},
	FieldTypeTime:      {},
	FieldTypeSelect:    {},
	FieldTypeSignature: {},
	FieldTypeReference: {},
}

// Validate checks a schema at construction time. Duplicate field keys are
// tolerated only when every occurrence carries an identical validation spec;
// divergent duplicates are a load error rather than a runtime ambiguity,
// since silently preferring the first occurrence loses the other rules.
func Validate(s FormSchema) error {
	if s.Name == "" {
		return errNameMissing
	}
	if len(s.Blocks) == 0 {
		return errNoBlocks
	}

	firstSeen := make(map[string]FieldDefinition)
	for i, block := range s.Blocks {
		switch block.Kind {
		case BlockHeader, BlockParagraph:
			continue
		case BlockField, BlockPhantomField:
		default:
			return fmt.Errorf("schema: block %d: unknown kind %q", i, block.Kind)
		}

		if block.Field == nil {
			return fmt.Errorf("schema: block %d: %w", i, errFieldMissing)
		}
		field := *block.Field
		if field.Field == "" {
			return fmt.Errorf("schema: block %d: %w", i, errFieldKeyEmpty)
		}
		if _, ok := knownFieldTypes[field.Type]; !ok {
			return fmt.Errorf("schema: field %q: unknown type %q", field.Field, field.Type)
		}
		if field.Source != "" && field.Source != SourceManual && field.Source != SourceComputed {
			return fmt.Errorf("schema: field %q: unknown source %q", field.Field, field.Source)
		}
		if field.Type == FieldTypeSelect && len(field.Options) == 0 {
			return fmt.Errorf("schema: field %q: select field requires options", field.Field)
		}
		if block.Kind == BlockPhantomField && field.Position != nil {
			return fmt.Errorf("schema: field %q: phantom field must not carry a position", field.Field)
		}

		if prior, dup := firstSeen[field.Field]; dup {
			if !reflect.DeepEqual(prior.Validations, field.Validations) {
				return fmt.Errorf("schema: field %q: duplicate key with divergent validators", field.Field)
			}
			continue
		}
		firstSeen[field.Field] = field
	}

	partyIDs := make(map[string]struct{}, len(s.SigningParties))
	for _, party := range s.SigningParties {
		if party.ID == "" {
			return errors.New("schema: signing party id is required")
		}
		if _, dup := partyIDs[party.ID]; dup {
			return fmt.Errorf("schema: duplicate signing party %q", party.ID)
		}
		partyIDs[party.ID] = struct{}{}
		for _, contact := range party.RequiredContactFields {
			if contact.Field == "" {
				return fmt.Errorf("schema: signing party %q: contact field key is required", party.ID)
			}
			if _, ok := knownFieldTypes[contact.Type]; !ok {
				return fmt.Errorf("schema: signing party %q: contact field %q: unknown type %q", party.ID, contact.Field, contact.Type)
			}
		}
	}

	return nil
}
