package batch

import (
	"fmt"
	"time"

	apperrors "decree-workers/internal/common/errors"
	"decree-workers/internal/models"
)

// State is the lifecycle position of a batch.
type State string

const (
	StateIdle         State = "Idle"
	StateProcessing   State = "Processing"
	StateFinalizing   State = "Finalizing"
	StateCompleted    State = "Completed"
	StateCancelled    State = "Cancelled"
	StateEmptyFailure State = "EmptyFailure"
)

// Stage names the per-item step that failed.
type Stage string

const (
	StageTemplate Stage = "template"
	StageRegister Stage = "register"
	StageRender   Stage = "render"
	StagePackage  Stage = "package"
)

// ItemError records why one candidate produced no document.
type ItemError struct {
	Index       int
	Name        string
	CandidateID string
	Category    models.Category
	Stage       Stage
	Code        apperrors.ErrorCode
	TemplateID  string

	// DecreeID and Number are set when the decree was persisted before the
	// failure. That record stays active and its number is not reused.
	DecreeID string
	Number   string
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s (#%d) %s: %v", e.Name, e.Index+1, e.Stage, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

// Success records one generated document.
type Success struct {
	Index       int
	Name        string
	CandidateID string
	Category    models.Category
	DecreeID    string
	Number      string
	File        string
}

// Result is the outcome of a batch. Archive is nil unless at least one
// document was generated.
type Result struct {
	BatchID      string
	State        State
	SuccessCount int
	ErrorCount   int
	Skipped      int // not attempted because the batch was cancelled
	Archive      []byte
	Successes    []Success
	Errors       []*ItemError
	FirstNumber  int // sequence number of the first attempted item
	NextSequence int // counter value after the batch
	Duration     time.Duration

	// CounterErr is set when NextSequence could not be stored. The documents
	// are valid; the next batch needs an explicit start sequence.
	CounterErr error
}
