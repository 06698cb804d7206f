// Package workflow coordinates a multi-party fill-out: which blocks the
// current actor sees, whether other parties' signatures are required, and the
// two-path submission flow (silent fill-out vs. e-sign initiation).
package workflow

import (
	"context"
	"errors"

	"github.com/goliatone/go-formfill/pkg/values"
)

// Mode selects the submission path.
type Mode string

const (
	// ModeManual persists the final values and hands them off for
	// manual-signature generation.
	ModeManual Mode = "manual"
	// ModeEsign initiates a multi-party electronic-signature flow, collecting
	// missing recipients' contact details first when required.
	ModeEsign Mode = "esign"
)

// State names the coordinator's position in the submission flow.
type State string

const (
	// StateEditing is the default; the user is mutating values.
	StateEditing State = "editing"
	// StateValidating is the transient state while submit-intent validation
	// runs over the actor's eligible fields.
	StateValidating State = "validating"
	// StateBlocked means validation produced errors; the coordinator surfaces
	// them and settles back into StateEditing.
	StateBlocked State = "blocked"
	// StateReadyManual means validation passed for the fill-out-only path.
	StateReadyManual State = "ready_manual"
	// StateReadyEsign means validation passed for the e-sign path; the
	// coordinator may still be waiting on signing-party contact details.
	StateReadyEsign State = "ready_esign"
	// StateDone is terminal; the submission sink accepted the form.
	StateDone State = "done"
)

var (
	// ErrBusy is returned when a submission is already in flight.
	ErrBusy = errors.New("workflow: submission already in progress")
	// ErrValidationFailed is returned when submit-intent validation produced
	// errors; read them via Errors.
	ErrValidationFailed = errors.New("workflow: validation failed")
	// ErrContactsRequired is returned from an e-sign submit when unresolved
	// signing parties still need contact details; fill the contact form and
	// submit again.
	ErrContactsRequired = errors.New("workflow: signing party contacts required")
	// ErrDone is returned when the session already submitted successfully.
	ErrDone = errors.New("workflow: session is complete")
	// ErrUnknownMode is returned for a submission mode the coordinator does
	// not understand.
	ErrUnknownMode = errors.New("workflow: unknown submission mode")
)

// Submission is the payload handed to the submission sink. RequestID is
// unique per attempt so the backend can deduplicate retries.
type Submission struct {
	RequestID string
	FormName  string
	Version   string
	Values    values.FormValues
}

// Result is the sink's verdict. Message is surfaced to the user verbatim.
type Result struct {
	Success bool
	Message string
}

// Sink receives the two terminal operations of a fill-out.
type Sink interface {
	FilloutForm(ctx context.Context, sub Submission) (Result, error)
	InitiateForm(ctx context.Context, sub Submission) (Result, error)
}

// Logger is the minimal logging seam for persistence and submission
// failures.
type Logger interface {
	Printf(format string, args ...any)
}
