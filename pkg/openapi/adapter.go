// Package openapi derives fillable form schemas from OpenAPI documents. Each
// mutating operation's request body becomes one single-party form: properties
// map to typed fields, the required list and per-property constraints map to
// validation rules. It is an authoring aid; generated schemas go through the
// same schema.Validate gate as hand-written ones.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formfill/pkg/schema"
)

// Option configures the adapter.
type Option func(*Adapter)

// WithActor sets the signing-party id generated fields are assigned to.
func WithActor(actor string) Option {
	return func(a *Adapter) {
		if actor != "" {
			a.actor = actor
		}
	}
}

// WithVersion stamps generated schemas with a version. Defaults to the
// document's own info.version.
func WithVersion(version string) Option {
	return func(a *Adapter) {
		a.version = version
	}
}

// Adapter converts OpenAPI operations into form schemas.
type Adapter struct {
	actor   string
	version string
}

// New constructs an Adapter. Generated fields default to the "initiator"
// party.
func New(options ...Option) *Adapter {
	a := &Adapter{actor: "initiator"}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Forms loads raw OpenAPI content and derives one form schema per mutating
// operation (POST, PUT, PATCH) that carries a request body. Results are
// sorted by form name so output is deterministic.
func (a *Adapter) Forms(ctx context.Context, raw []byte) ([]schema.FormSchema, error) {
	if len(raw) == 0 {
		return nil, errors.New("openapi: document is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate document: %w", err)
	}

	version := a.version
	if version == "" && doc.Info != nil {
		version = doc.Info.Version
	}

	var forms []schema.FormSchema
	if doc.Paths != nil {
		for path, item := range doc.Paths.Map() {
			if item == nil {
				continue
			}
			for method, op := range map[string]*openapi3.Operation{
				"POST":  item.Post,
				"PUT":   item.Put,
				"PATCH": item.Patch,
			} {
				form, ok := a.formFromOperation(method, path, op, version)
				if !ok {
					continue
				}
				if err := schema.Validate(form); err != nil {
					return nil, fmt.Errorf("openapi: operation %s %s: %w", method, path, err)
				}
				forms = append(forms, form)
			}
		}
	}

	if len(forms) == 0 {
		return nil, errors.New("openapi: no form-bearing operations found")
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].Name < forms[j].Name })
	return forms, nil
}

func (a *Adapter) formFromOperation(method, path string, op *openapi3.Operation, version string) (schema.FormSchema, bool) {
	if op == nil {
		return schema.FormSchema{}, false
	}
	body := requestSchema(op.RequestBody)
	if body == nil || len(body.Properties) == 0 {
		return schema.FormSchema{}, false
	}

	name := op.OperationID
	if name == "" {
		name = strings.ToLower(method) + strings.ReplaceAll(path, "/", "-")
	}

	form := schema.FormSchema{Name: name, Version: version}
	order := 0

	if op.Summary != "" {
		form.Blocks = append(form.Blocks, schema.Block{
			Kind: schema.BlockHeader, Order: order, Text: op.Summary,
		})
		order++
	}
	if op.Description != "" {
		form.Blocks = append(form.Blocks, schema.Block{
			Kind: schema.BlockParagraph, Order: order, Text: op.Description,
		})
		order++
	}

	required := make(map[string]struct{}, len(body.Required))
	for _, key := range body.Required {
		required[key] = struct{}{}
	}

	// Map iteration order is random; sort for stable block order.
	keys := make([]string, 0, len(body.Properties))
	for key := range body.Properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		property := body.Properties[key]
		if property == nil || property.Value == nil {
			continue
		}
		_, isRequired := required[key]
		field := a.fieldFromProperty(key, property.Value, isRequired)
		form.Blocks = append(form.Blocks, schema.Block{
			Kind:           schema.BlockField,
			Order:          order,
			SigningPartyID: a.actor,
			Field:          &field,
		})
		order++
	}
	return form, true
}

func requestSchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	content := ref.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

func (a *Adapter) fieldFromProperty(key string, property *openapi3.Schema, required bool) schema.FieldDefinition {
	field := schema.FieldDefinition{
		Field:          key,
		Label:          labelFromKey(key),
		Type:           fieldType(property),
		SigningPartyID: a.actor,
		Source:         schema.SourceManual,
	}
	if property.Title != "" {
		field.Label = property.Title
	}

	if field.Type == schema.FieldTypeSelect {
		for _, value := range property.Enum {
			field.Options = append(field.Options, schema.SelectOption{Value: fmt.Sprint(value)})
		}
	}

	field.Validations = rulesFromProperty(property, required)
	return field
}

func fieldType(property *openapi3.Schema) schema.FieldType {
	if len(property.Enum) > 0 {
		return schema.FieldTypeSelect
	}
	switch firstType(property.Type) {
	case "number", "integer":
		return schema.FieldTypeNumber
	case "boolean":
		return schema.FieldTypeSignature
	default:
		switch property.Format {
		case "date", "date-time":
			return schema.FieldTypeDate
		case "time":
			return schema.FieldTypeTime
		default:
			return schema.FieldTypeText
		}
	}
}

func rulesFromProperty(property *openapi3.Schema, required bool) []schema.ValidationRule {
	var rules []schema.ValidationRule
	add := func(kind string, params map[string]string) {
		rules = append(rules, schema.ValidationRule{Kind: kind, Params: params})
	}

	if required {
		add(schema.ValidationRuleRequired, nil)
	}
	if property.Format == "email" {
		add(schema.ValidationRuleEmail, nil)
	}
	if property.Min != nil {
		add(schema.ValidationRuleMin, map[string]string{"value": formatFloat(*property.Min)})
	}
	if property.Max != nil {
		add(schema.ValidationRuleMax, map[string]string{"value": formatFloat(*property.Max)})
	}
	if property.MinLength > 0 {
		add(schema.ValidationRuleMinLength, map[string]string{"value": strconv.FormatUint(property.MinLength, 10)})
	}
	if property.MaxLength != nil {
		add(schema.ValidationRuleMaxLength, map[string]string{"value": strconv.FormatUint(*property.MaxLength, 10)})
	}
	if property.Pattern != "" {
		add(schema.ValidationRulePattern, map[string]string{"pattern": property.Pattern})
	}
	return rules
}

func firstType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	if values := types.Slice(); len(values) > 0 {
		return values[0]
	}
	return ""
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

func labelFromKey(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-'
	})
	if len(words) == 0 {
		return key
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}
