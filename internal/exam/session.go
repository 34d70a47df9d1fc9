package exam

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/techops-academy/certifier/internal/model"
)

// State is the lifecycle phase of an exam session.
type State string

const (
	StateTheoryInProgress     State = "theory_in_progress"
	StateSimulationInProgress State = "simulation_in_progress"
	StateAwaitingSubmission   State = "awaiting_submission"
	StateSubmitting           State = "submitting"
	StateSubmitted            State = "submitted"
)

// ErrNoQuestions is returned when a session is started against an empty
// selection. It marks the non-fatal "no exam available" condition.
var ErrNoQuestions = errors.New("exam: no questions available")

// ErrWrongState is wrapped by every transition attempted outside its
// permitted state.
var ErrWrongState = errors.New("exam: operation not valid in current state")

// Session is the mutable state of one exam attempt. It is an explicit value
// owned by a single trainee; nothing about it is shared across attempts, and
// all transitions go through its methods. Answer logs are append-only.
//
// Methods are safe for concurrent use: user-facing drivers can deliver
// duplicate events (double-click), and the state checks drop them instead of
// queueing.
type Session struct {
	mu sync.Mutex

	traineeName  string
	traineeEmail string

	questions []model.Question
	cases     []model.SimulationCase

	state    State
	theoryIx int
	simIx    int

	theoryAnswers []model.AnswerRecord
	simAnswers    []model.DecisionRecord
	theoryScore   int
	simScore      int

	theoryPercent int
	simPercent    int
	passed        bool

	startedAt  time.Time
	finishedAt time.Time
}

// NewSession starts an attempt over an already-sampled question list and the
// simulation case list. An empty question list is rejected with
// ErrNoQuestions.
func NewSession(traineeName, traineeEmail string, questions []model.Question, cases []model.SimulationCase) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return &Session{
		traineeName:  traineeName,
		traineeEmail: traineeEmail,
		questions:    questions,
		cases:        cases,
		state:        StateTheoryInProgress,
		startedAt:    time.Now(),
	}, nil
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentQuestion returns the theory question awaiting an answer.
func (s *Session) CurrentQuestion() (model.Question, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTheoryInProgress {
		return model.Question{}, 0, 0, fmt.Errorf("current question: %w", ErrWrongState)
	}
	return s.questions[s.theoryIx], s.theoryIx + 1, len(s.questions), nil
}

// CurrentCase returns the simulation case awaiting a decision.
func (s *Session) CurrentCase() (model.SimulationCase, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSimulationInProgress {
		return model.SimulationCase{}, 0, 0, fmt.Errorf("current case: %w", ErrWrongState)
	}
	return s.cases[s.simIx], s.simIx + 1, len(s.cases), nil
}

// AnswerMultiple grades a multiple-choice submission for the current theory
// question, appends the record, and advances the stage. Answers land in
// strict presentation order: the index only moves once the current question
// is graded.
func (s *Session) AnswerMultiple(selected int) (model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTheoryInProgress {
		return model.AnswerRecord{}, fmt.Errorf("answer: %w", ErrWrongState)
	}

	q := s.questions[s.theoryIx]
	if q.Type != model.QuestionMultiple {
		return model.AnswerRecord{}, fmt.Errorf("answer: question %s expects a free-text submission", q.ID)
	}

	rec := model.AnswerRecord{
		Index:        s.theoryIx + 1,
		Question:     q.Text,
		Type:         model.QuestionMultiple,
		Selected:     selected,
		CorrectIndex: q.CorrectIndex,
		Correct:      GradeMultiple(q, selected),
	}
	if selected >= 0 && selected < len(q.Options) {
		rec.SelectedText = q.Options[selected]
	}
	if q.CorrectIndex >= 0 && q.CorrectIndex < len(q.Options) {
		rec.CorrectText = q.Options[q.CorrectIndex]
	}

	s.recordTheory(rec)
	return rec, nil
}

// AnswerFreeText grades a free-text submission for the current theory
// question, appends the record, and advances the stage.
func (s *Session) AnswerFreeText(submission string) (model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTheoryInProgress {
		return model.AnswerRecord{}, fmt.Errorf("answer: %w", ErrWrongState)
	}

	q := s.questions[s.theoryIx]
	if q.Type != model.QuestionFreeText {
		return model.AnswerRecord{}, fmt.Errorf("answer: question %s expects an option index", q.ID)
	}

	rec := model.AnswerRecord{
		Index:           s.theoryIx + 1,
		Question:        q.Text,
		Type:            model.QuestionFreeText,
		UserAnswer:      submission,
		AcceptedAnswers: q.AcceptedAnswers,
		Correct:         GradeFreeText(q, submission),
	}

	s.recordTheory(rec)
	return rec, nil
}

// recordTheory appends a graded record and either advances the index or,
// after the last question, grades the stage. Callers hold s.mu.
func (s *Session) recordTheory(rec model.AnswerRecord) {
	s.theoryAnswers = append(s.theoryAnswers, rec)
	if rec.Correct {
		s.theoryScore++
	}
	if s.theoryIx < len(s.questions)-1 {
		s.theoryIx++
		return
	}
	s.gradeTheory()
}

// gradeTheory closes the theory stage. A pass opens the simulation stage; a
// fail is terminal and moves straight to submission with a zero simulation
// score. Callers hold s.mu.
func (s *Session) gradeTheory() {
	s.theoryPercent = Percentage(s.theoryScore, len(s.questions))
	if Passed(s.theoryPercent) && len(s.cases) > 0 {
		s.state = StateSimulationInProgress
		return
	}
	s.simPercent = 0
	s.passed = false
	s.finishedAt = time.Now()
	s.state = StateAwaitingSubmission
}

// Decide grades an accept/deny decision for the current simulation case,
// appends the record, and advances. The last decision grades the stage and
// the attempt as a whole.
func (s *Session) Decide(action model.SimulationDecision) (model.DecisionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSimulationInProgress {
		return model.DecisionRecord{}, fmt.Errorf("decide: %w", ErrWrongState)
	}
	if action != model.DecisionAccept && action != model.DecisionDeny {
		return model.DecisionRecord{}, fmt.Errorf("decide: unknown action %q", action)
	}

	sc := s.cases[s.simIx]
	rec := model.DecisionRecord{
		Index:         s.simIx + 1,
		Title:         sc.Title,
		Selected:      action,
		CorrectAction: sc.CorrectAction,
		Correct:       action == sc.CorrectAction,
	}
	s.simAnswers = append(s.simAnswers, rec)
	if rec.Correct {
		s.simScore++
	}

	if s.simIx < len(s.cases)-1 {
		s.simIx++
		return rec, nil
	}

	s.simPercent = Percentage(s.simScore, len(s.cases))
	s.passed = OverallPassed(s.theoryPercent, s.simPercent)
	s.finishedAt = time.Now()
	s.state = StateAwaitingSubmission
	return rec, nil
}

// Scores returns the stage percentages computed so far.
func (s *Session) Scores() (theoryPercent, simPercent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theoryPercent, s.simPercent
}

// Result snapshots the completed attempt. It is only available once both
// stages are graded (or the theory stage failed terminally).
func (s *Session) Result() (model.ExamResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateAwaitingSubmission, StateSubmitting, StateSubmitted:
	default:
		return model.ExamResult{}, fmt.Errorf("result: %w", ErrWrongState)
	}

	return model.ExamResult{
		TraineeName:       s.traineeName,
		TraineeEmail:      s.traineeEmail,
		TheoryScore:       s.theoryScore,
		TheoryTotal:       len(s.questions),
		TheoryPercent:     s.theoryPercent,
		SimulationScore:   s.simScore,
		SimulationTotal:   len(s.cases),
		SimulationPercent: s.simPercent,
		Passed:            s.passed,
		TheoryAnswers:     append([]model.AnswerRecord(nil), s.theoryAnswers...),
		SimulationAnswers: append([]model.DecisionRecord(nil), s.simAnswers...),
		StartedAt:         s.startedAt,
		FinishedAt:        s.finishedAt,
	}, nil
}

// beginSubmit claims the at-most-one-in-flight submission slot. It returns
// false when a submission is already in flight or has succeeded, in which
// case the caller must treat its attempt as a no-op.
func (s *Session) beginSubmit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAwaitingSubmission {
		return false
	}
	s.state = StateSubmitting
	return true
}

// finishSubmit releases the submission slot: success parks the session in
// its terminal state, failure returns it to AwaitingSubmission so the caller
// may retry.
func (s *Session) finishSubmit(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateSubmitting {
		return
	}
	if ok {
		s.state = StateSubmitted
	} else {
		s.state = StateAwaitingSubmission
	}
}
