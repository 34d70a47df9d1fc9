package exam

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/techops-academy/certifier/internal/model"
)

// fakeRecorder counts deliveries and can fail or block on demand.
type fakeRecorder struct {
	delivered atomic.Int64
	fail      atomic.Bool
	block     chan struct{} // non-nil: RecordAttempt waits until closed
}

func (f *fakeRecorder) RecordAttempt(ctx context.Context, result model.ExamResult) (Receipt, error) {
	if f.block != nil {
		<-f.block
	}
	if f.fail.Load() {
		return Receipt{}, errors.New("network down")
	}
	n := f.delivered.Add(1)
	return Receipt{AttemptNo: int(n), ArtifactPreviewURL: "/artifacts/attempt.pdf"}, nil
}

func finishedSession(t *testing.T) *Session {
	t.Helper()
	s := newTestSession(t, []model.Question{mcQuestion("q1", "dns")}, testCases(1))
	if _, err := s.AnswerMultiple(1); err != nil {
		t.Fatalf("AnswerMultiple: %v", err)
	}
	if _, err := s.Decide(model.DecisionDeny); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	return s
}

func TestSubmitDeliversOnce(t *testing.T) {
	rec := &fakeRecorder{}
	sub := NewSubmitter(rec)
	s := finishedSession(t)

	out := sub.Submit(context.Background(), s)
	if !out.Accepted || out.Err != nil {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.ArtifactPreviewURL == "" {
		t.Error("expected artifact preview URL")
	}
	if s.State() != StateSubmitted {
		t.Errorf("expected submitted state, got %s", s.State())
	}

	// A second call after success is a designed no-op.
	out = sub.Submit(context.Background(), s)
	if !out.Duplicate || out.Accepted {
		t.Fatalf("expected duplicate no-op, got %+v", out)
	}
	if got := rec.delivered.Load(); got != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d", got)
	}
}

func TestSubmitDropsConcurrentDuplicates(t *testing.T) {
	rec := &fakeRecorder{block: make(chan struct{})}
	sub := NewSubmitter(rec)
	s := finishedSession(t)

	const callers = 8
	outcomes := make([]Outcome, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = sub.Submit(context.Background(), s)
		}(i)
	}

	close(rec.block)
	wg.Wait()

	accepted, duplicates := 0, 0
	for _, out := range outcomes {
		switch {
		case out.Accepted:
			accepted++
		case out.Duplicate:
			duplicates++
		default:
			t.Errorf("unexpected outcome: %+v", out)
		}
	}
	if accepted != 1 || duplicates != callers-1 {
		t.Fatalf("expected 1 accepted + %d duplicates, got %d + %d", callers-1, accepted, duplicates)
	}
	if got := rec.delivered.Load(); got != 1 {
		t.Fatalf("expected exactly 1 delivery, got %d", got)
	}
}

func TestSubmitFailureIsRetryable(t *testing.T) {
	rec := &fakeRecorder{}
	rec.fail.Store(true)
	sub := NewSubmitter(rec)
	s := finishedSession(t)

	out := sub.Submit(context.Background(), s)
	if out.Err == nil || out.Accepted {
		t.Fatalf("expected recoverable error, got %+v", out)
	}
	// Scores survive the failure; the session is back to awaiting submission.
	if s.State() != StateAwaitingSubmission {
		t.Fatalf("expected awaiting submission after failure, got %s", s.State())
	}
	if theory, _ := s.Scores(); theory != 100 {
		t.Errorf("scores must be preserved across a failed submission, got %d", theory)
	}

	// Network recovers: the retry records exactly one attempt.
	rec.fail.Store(false)
	out = sub.Submit(context.Background(), s)
	if !out.Accepted || out.Err != nil {
		t.Fatalf("retry should succeed, got %+v", out)
	}
	if got := rec.delivered.Load(); got != 1 {
		t.Fatalf("expected exactly 1 stored attempt after retry, got %d", got)
	}
}

func TestSubmitBeforeCompletion(t *testing.T) {
	rec := &fakeRecorder{}
	sub := NewSubmitter(rec)
	s := newTestSession(t, []model.Question{mcQuestion("q1", "dns")}, testCases(1))

	out := sub.Submit(context.Background(), s)
	if !errors.Is(out.Err, ErrWrongState) {
		t.Fatalf("expected ErrWrongState, got %+v", out)
	}
	if rec.delivered.Load() != 0 {
		t.Fatal("incomplete session must never reach the recorder")
	}
}
