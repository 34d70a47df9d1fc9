package certificate

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/model"
)

func testAttempt() model.ExamAttempt {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return model.ExamAttempt{
		ExamType:          "L1 Support",
		Passed:            true,
		TheoryPercent:     90,
		SimulationPercent: 80,
		AttemptNo:         2,
		FinishedAt:        now,
		Result: model.ExamResult{
			TraineeName:   "Kovács Anna",
			TraineeEmail:  "anna@example.com",
			TheoryPercent: 90,
			TheoryAnswers: []model.AnswerRecord{
				{Index: 1, Question: "Mit csinál az A rekord?", Correct: true},
				{Index: 2, Question: "Mi a TTL?", Correct: false},
			},
			SimulationAnswers: []model.DecisionRecord{
				{Index: 1, Title: "Gyanús domain igénylés", Selected: model.DecisionDeny, Correct: true},
			},
		},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	if err := i18n.Init("hu"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	data, err := Render(context.Background(), testAttempt())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output is not a PDF, starts with %q", data[:min(8, len(data))])
	}
	if len(data) < 1000 {
		t.Errorf("suspiciously small PDF: %d bytes", len(data))
	}
}

func TestRenderWithoutDetailSections(t *testing.T) {
	if err := i18n.Init("hu"); err != nil {
		t.Fatalf("i18n.Init: %v", err)
	}

	a := testAttempt()
	a.Result.TheoryAnswers = nil
	a.Result.SimulationAnswers = nil
	a.Passed = false

	data, err := Render(context.Background(), a)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("output is not a PDF")
	}
}
