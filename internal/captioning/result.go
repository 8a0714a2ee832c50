package captioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/captioner/internal/pricing"
)

// Failure categories. Every StageError wraps exactly one of these.
var (
	ErrKeyUnavailable = errors.New("api key unavailable")
	ErrImageEncoding  = errors.New("image encoding failed")
	ErrResponseParse  = errors.New("response parse failed")
	ErrTransport      = errors.New("transport failed")
	ErrFilesystem     = errors.New("filesystem error")
)

// Stage names a step of the captioning run.
type Stage string

const (
	StageKey      Stage = "key"
	StageImage    Stage = "image"
	StageRequest  Stage = "request"
	StageResponse Stage = "response"
	StageSave     Stage = "save"
)

// StageError records a failure and the stage it happened in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a captioning run. It is returned for failed runs
// too; Log always holds every step that was attempted.
type Result struct {
	Prompt      string
	Caption     string
	CostSummary string
	Usage       *pricing.Usage
	SavedPath   string
	Log         []string
	Errors      []*StageError
}

// Failed reports whether any stage failed.
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// FailedStage returns the first stage that failed, or "" on success.
func (r *Result) FailedStage() Stage {
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[0].Stage
}

// Err joins all stage errors, or returns nil on success.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// LogText returns the log entries one per line.
func (r *Result) LogText() string {
	return strings.Join(r.Log, "\n")
}

func (r *Result) logf(format string, args ...any) {
	r.Log = append(r.Log, fmt.Sprintf(format, args...))
}

func (r *Result) fail(stage Stage, kind error, cause error) {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}
	r.Errors = append(r.Errors, &StageError{Stage: stage, Err: err})
}
