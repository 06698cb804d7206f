package tui

import (
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

// Option configures the interactive filler.
type Option func(*Filler)

// WithPromptDriver overrides the prompt driver. The default drives a real
// terminal through survey.
func WithPromptDriver(driver PromptDriver) Option {
	return func(f *Filler) {
		if driver != nil {
			f.driver = driver
		}
	}
}

// WithReferenceOptions supplies the option list reference fields select from,
// typically resolved from the engine's entity directory.
func WithReferenceOptions(options []schema.SelectOption) Option {
	return func(f *Filler) {
		f.references = options
	}
}

// WithMode selects the submission path. The default is the manual fill-out
// path.
func WithMode(mode workflow.Mode) Option {
	return func(f *Filler) {
		if mode != "" {
			f.mode = mode
		}
	}
}
