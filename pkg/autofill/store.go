// Package autofill merges previously saved answers and computed defaults into
// a fill-out session without ever overwriting what the user already typed.
package autofill

import (
	"context"

	"github.com/goliatone/go-formfill/pkg/values"
)

// Store persists per-user autofill values keyed by form name. The backend
// owns the persisted copies; the engine only reads them at session start and
// writes them back on submission.
type Store interface {
	GetAutofill(ctx context.Context, formName string) (values.FormValues, error)
	PutAutofill(ctx context.Context, formName string, vals values.FormValues) error
}

// Prefiller computes a default value for a single field. Prefillers are
// supplied by the host per field key and treated as untrusted: a failing or
// panicking prefiller never aborts seeding of the remaining fields.
type Prefiller func() (string, error)

// Logger is the minimal logging seam the resolver needs for reporting
// isolated prefiller failures.
type Logger interface {
	Printf(format string, args ...any)
}
