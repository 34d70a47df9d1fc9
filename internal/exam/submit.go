package exam

import (
	"context"
	"fmt"

	"github.com/techops-academy/certifier/internal/model"
)

// AttemptRecorder is the storage/notification boundary a finished attempt is
// delivered to. Implementations persist the record, number the attempt, and
// kick off certificate generation and email delivery; they may surface a
// preview link for the generated artifact.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, result model.ExamResult) (Receipt, error)
}

// Receipt is the collaborator's acknowledgement of a recorded attempt.
type Receipt struct {
	AttemptNo          int
	ArtifactPreviewURL string
}

// Outcome reports what a Submit call did.
type Outcome struct {
	// Accepted is true when this call delivered the attempt.
	Accepted bool
	// Duplicate is true when the call was dropped because a submission was
	// already in flight or had succeeded. A duplicate is a designed no-op,
	// not an error.
	Duplicate bool
	// AttemptNo and ArtifactPreviewURL are set on acceptance.
	AttemptNo          int
	ArtifactPreviewURL string
	// Err is set on a recoverable delivery failure; the session stays
	// retryable and its computed scores are preserved.
	Err error
}

// Submitter drives the exactly-once delivery of a finished session. All
// idempotency state lives on the session itself, so one Submitter can serve
// any number of independent sessions.
type Submitter struct {
	recorder AttemptRecorder
}

// NewSubmitter wires a Submitter to its recording collaborator.
func NewSubmitter(recorder AttemptRecorder) *Submitter {
	return &Submitter{recorder: recorder}
}

// Submit packages the session's result and delivers it at most once.
//
// Concurrent duplicate calls (double-click) while a delivery is in flight
// return immediately with Duplicate set and never reach the recorder; the
// same applies after a successful delivery. A failed delivery releases the
// guard only as it returns, so a retry is possible but never concurrent with
// the in-flight call.
func (sub *Submitter) Submit(ctx context.Context, s *Session) Outcome {
	result, err := s.Result()
	if err != nil {
		return Outcome{Err: err}
	}

	if !s.beginSubmit() {
		return Outcome{Duplicate: true}
	}

	receipt, err := sub.recorder.RecordAttempt(ctx, result)
	if err != nil {
		s.finishSubmit(false)
		return Outcome{Err: fmt.Errorf("record attempt: %w", err)}
	}

	s.finishSubmit(true)
	return Outcome{
		Accepted:           true,
		AttemptNo:          receipt.AttemptNo,
		ArtifactPreviewURL: receipt.ArtifactPreviewURL,
	}
}
