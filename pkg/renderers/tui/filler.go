// Package tui drives an interactive terminal fill-out of a form session. It
// prompts per field type, validates inline through the session's own rules,
// and walks the submission flow including the signing-party contact step.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

// Filler prompts for every renderable field of a coordinator session and
// submits the result.
type Filler struct {
	driver     PromptDriver
	references []schema.SelectOption
	mode       workflow.Mode
}

// New constructs a Filler. Without options it prompts on the real terminal
// and submits through the manual fill-out path.
func New(options ...Option) *Filler {
	f := &Filler{
		driver: newSurveyDriver(),
		mode:   workflow.ModeManual,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(f)
	}
	return f
}

// Run prompts through blocks, submits the session, and resolves the contact
// step when the e-sign path requires it. Pass nil blocks to fall back to the
// coordinator's own renderable set; callers with a template engine pass the
// interpolated blocks instead.
func (f *Filler) Run(ctx context.Context, c *workflow.Coordinator, blocks []schema.Block) (workflow.Result, error) {
	if c == nil {
		return workflow.Result{}, errors.New("tui: coordinator is required")
	}
	if blocks == nil {
		blocks = c.RenderableBlocks()
	}

	if err := f.Fill(ctx, c, blocks); err != nil {
		return workflow.Result{}, err
	}
	return f.Submit(ctx, c)
}

// Fill prompts for each field block in order, echoing display blocks as
// informational text. Each answer is validated in place; invalid input
// re-prompts until it passes or the user aborts.
func (f *Filler) Fill(ctx context.Context, c *workflow.Coordinator, blocks []schema.Block) error {
	for _, block := range blocks {
		if block.Display() {
			if block.Text != "" {
				if err := f.driver.Info(ctx, block.Text); err != nil {
					return err
				}
			}
			continue
		}
		if block.Field == nil {
			continue
		}
		if err := f.promptField(ctx, *block.Field, c.EffectiveValues(), promptTarget{
			set:      func(v any) { c.OnFieldChange(block.Field.Field, v) },
			validate: func() string { return c.OnFieldBlur(block.Field.Field) },
		}); err != nil {
			return err
		}
	}
	return nil
}

// Submit runs the configured submission path. On the e-sign path it prompts
// for the missing signing-party contact details and resubmits.
func (f *Filler) Submit(ctx context.Context, c *workflow.Coordinator) (workflow.Result, error) {
	for {
		result, err := c.Submit(ctx, f.mode)
		switch {
		case err == nil:
			if !result.Success && result.Message != "" {
				_ = f.driver.Info(ctx, "Submission rejected: "+result.Message)
			}
			return result, nil
		case errors.Is(err, workflow.ErrValidationFailed):
			f.reportErrors(ctx, c.EffectiveErrors())
			return workflow.Result{}, err
		case errors.Is(err, workflow.ErrContactsRequired):
			if err := f.promptContacts(ctx, c.Contacts()); err != nil {
				return workflow.Result{}, err
			}
		default:
			return workflow.Result{}, err
		}
	}
}

func (f *Filler) promptContacts(ctx context.Context, contacts *workflow.ContactForm) error {
	if contacts == nil {
		return errors.New("tui: contact form missing")
	}
	for _, party := range contacts.Parties() {
		if err := f.driver.Info(ctx, fmt.Sprintf("Contact details for %s:", party.ID)); err != nil {
			return err
		}
	}
	for _, field := range contacts.Fields() {
		field := field
		if err := f.promptField(ctx, field, contacts.Values(), promptTarget{
			set:      func(v any) { contacts.SetValue(field.Field, v) },
			validate: func() string { return contacts.Validate()[field.Field] },
		}); err != nil {
			return err
		}
	}
	return nil
}

// promptTarget decouples the prompt loop from where an answer lands: the main
// session or the contact sub-form.
type promptTarget struct {
	set      func(value any)
	validate func() string
}

func (f *Filler) promptField(ctx context.Context, field schema.FieldDefinition, current values.FormValues, target promptTarget) error {
	for {
		answer, err := f.promptOnce(ctx, field, current[field.Field])
		if err != nil {
			return err
		}
		target.set(answer)
		if msg := target.validate(); msg != "" {
			if err := f.driver.Info(ctx, msg); err != nil {
				return err
			}
			continue
		}
		return nil
	}
}

func (f *Filler) promptOnce(ctx context.Context, field schema.FieldDefinition, current string) (string, error) {
	label := field.Label
	if label == "" {
		label = field.Field
	}

	switch field.Type {
	case schema.FieldTypeSignature:
		signed, err := f.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Sign %q?", label),
			Default: current == values.SignatureTrue,
		})
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(signed), nil

	case schema.FieldTypeSelect:
		return f.promptSelect(ctx, label, field, field.Options, current)

	case schema.FieldTypeReference:
		if len(f.references) > 0 {
			return f.promptSelect(ctx, label, field, f.references, current)
		}
		return f.driver.Input(ctx, InputConfig{
			Message: label + " id",
			Default: current,
		})

	case schema.FieldTypeDate:
		return f.promptDate(ctx, label, field, current)

	default:
		return f.driver.Input(ctx, InputConfig{
			Message: label,
			Default: current,
		})
	}
}

func (f *Filler) promptSelect(ctx context.Context, label string, field schema.FieldDefinition, options []schema.SelectOption, current string) (string, error) {
	labels := make([]string, len(options))
	defaultIdx := -1
	for i, option := range options {
		labels[i] = option.Label
		if labels[i] == "" {
			labels[i] = option.Value
		}
		if option.Value == current {
			defaultIdx = i
		}
	}

	idx, err := f.driver.Select(ctx, SelectConfig{
		Message:      label,
		Options:      labels,
		DefaultIndex: defaultIdx,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("tui: selection out of range for %q", field.Field)
	}
	return options[idx].Value, nil
}

// promptDate accepts YYYY-MM-DD and converts it to the stored epoch-millis
// form; a raw integer passes through so scripted input and round-trips work.
func (f *Filler) promptDate(ctx context.Context, label string, field schema.FieldDefinition, current string) (string, error) {
	display := current
	if ms, err := strconv.ParseInt(current, 10, 64); err == nil && ms > 0 {
		display = time.UnixMilli(ms).UTC().Format("2006-01-02")
	}

	input, err := f.driver.Input(ctx, InputConfig{
		Message: label + " (YYYY-MM-DD)",
		Default: display,
	})
	if err != nil {
		return "", err
	}
	if input == "" {
		return "", nil
	}
	if parsed, err := time.Parse("2006-01-02", input); err == nil {
		return strconv.FormatInt(parsed.UnixMilli(), 10), nil
	}
	return input, nil
}

func (f *Filler) reportErrors(ctx context.Context, errs values.FormErrors) {
	for _, msg := range errs {
		if msg == "" {
			continue
		}
		_ = f.driver.Info(ctx, msg)
	}
}
