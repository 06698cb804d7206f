// Package testsupport provides in-memory collaborator fakes and a canonical
// agreement-form fixture shared by tests and the CLI's offline mode.
package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-formfill/pkg/engine"
	"github.com/goliatone/go-formfill/pkg/schema"
	"github.com/goliatone/go-formfill/pkg/values"
	"github.com/goliatone/go-formfill/pkg/workflow"
)

// StaticProvider serves schemas from an in-memory map keyed by form name.
type StaticProvider struct {
	Forms     map[string]schema.FormSchema
	Documents map[string]schema.DocumentInfo
	Err       error
}

// GetForm implements engine.Provider.
func (p *StaticProvider) GetForm(_ context.Context, name string) (schema.FormSchema, schema.DocumentInfo, error) {
	if p.Err != nil {
		return schema.FormSchema{}, schema.DocumentInfo{}, p.Err
	}
	form, ok := p.Forms[name]
	if !ok {
		return schema.FormSchema{}, schema.DocumentInfo{}, &NotFoundError{Form: name}
	}
	return form, p.Documents[name], nil
}

// NotFoundError reports a missing form.
type NotFoundError struct {
	Form string
}

func (e *NotFoundError) Error() string {
	return "testsupport: form " + e.Form + " not found"
}

// MemoryStore is an in-memory autofill store. Safe for concurrent use so
// tests can exercise it from helper goroutines.
type MemoryStore struct {
	mu     sync.Mutex
	data   map[string]values.FormValues
	GetErr error
	PutErr error
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]values.FormValues)}
}

// Seed replaces the stored values for a form.
func (s *MemoryStore) Seed(formName string, vals values.FormValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[formName] = values.Clone(vals)
}

// GetAutofill implements autofill.Store.
func (s *MemoryStore) GetAutofill(_ context.Context, formName string) (values.FormValues, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return values.Clone(s.data[formName]), nil
}

// PutAutofill implements autofill.Store.
func (s *MemoryStore) PutAutofill(_ context.Context, formName string, vals values.FormValues) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[formName] = values.Clone(vals)
	return nil
}

// RecordingSink records every submission it receives and replies with the
// configured results.
type RecordingSink struct {
	FilloutResult  workflow.Result
	InitiateResult workflow.Result
	FilloutErr     error
	InitiateErr    error

	Fillouts  []workflow.Submission
	Initiates []workflow.Submission
}

// NewRecordingSink returns a sink that accepts everything.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{
		FilloutResult:  workflow.Result{Success: true},
		InitiateResult: workflow.Result{Success: true},
	}
}

// FilloutForm implements workflow.Sink.
func (s *RecordingSink) FilloutForm(_ context.Context, sub workflow.Submission) (workflow.Result, error) {
	if s.FilloutErr != nil {
		return workflow.Result{}, s.FilloutErr
	}
	s.Fillouts = append(s.Fillouts, sub)
	return s.FilloutResult, nil
}

// InitiateForm implements workflow.Sink.
func (s *RecordingSink) InitiateForm(_ context.Context, sub workflow.Submission) (workflow.Result, error) {
	if s.InitiateErr != nil {
		return workflow.Result{}, s.InitiateErr
	}
	s.Initiates = append(s.Initiates, sub)
	return s.InitiateResult, nil
}

// StaticDirectory serves a fixed entity list.
type StaticDirectory struct {
	Entities []engine.Entity
	Err      error
}

// ListEntities implements engine.Directory.
func (d *StaticDirectory) ListEntities(context.Context) ([]engine.Entity, error) {
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Entities, nil
}
