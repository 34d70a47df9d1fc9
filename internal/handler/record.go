package handler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/techops-academy/certifier/internal/certificate"
	"github.com/techops-academy/certifier/internal/exam"
	"github.com/techops-academy/certifier/internal/model"
)

// attemptPipeline persists a finished attempt and runs the follow-up
// artifact work: certificate PDF, best-effort email. Only the insert can
// fail the submission; everything after it is logged and swallowed, the
// attempt is already on disk.
type attemptPipeline struct {
	h    *Handler
	user *model.User
}

func (h *Handler) recorderFor(user *model.User) exam.AttemptRecorder {
	return &attemptPipeline{h: h, user: user}
}

func (p *attemptPipeline) RecordAttempt(ctx context.Context, result model.ExamResult) (exam.Receipt, error) {
	attempt := model.ExamAttempt{
		UserID:            p.user.ID,
		ExamType:          p.h.config.ExamType,
		Score:             result.TheoryPercent,
		Passed:            result.Passed,
		TheoryPercent:     result.TheoryPercent,
		SimulationPercent: result.SimulationPercent,
		Result:            result,
		DurationSeconds:   int(result.FinishedAt.Sub(result.StartedAt).Seconds()),
		StartedAt:         result.StartedAt,
		FinishedAt:        result.FinishedAt,
	}

	stored, err := p.h.store.InsertAttempt(attempt)
	if err != nil {
		return exam.Receipt{}, fmt.Errorf("insert attempt: %w", err)
	}

	receipt := exam.Receipt{AttemptNo: stored.AttemptNo}

	pdf, err := certificate.Render(ctx, stored)
	if err != nil {
		slog.Error("render certificate", "attempt_id", stored.ID, "error", err)
		return receipt, nil
	}

	if url := p.saveArtifact(stored, pdf); url != "" {
		receipt.ArtifactPreviewURL = url
	}

	if err := p.h.mailer.SendResult(ctx, result.TraineeEmail, result.TraineeName, result.Passed, pdf); err != nil {
		slog.Error("send result email", "attempt_id", stored.ID, "error", err)
	}

	return receipt, nil
}

func (p *attemptPipeline) saveArtifact(a model.ExamAttempt, pdf []byte) string {
	dir := p.h.config.ArtifactsDir
	if dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Error("create artifacts dir", "dir", dir, "error", err)
		return ""
	}
	name := fmt.Sprintf("attempt_%d_%d.pdf", a.UserID, a.ID)
	if err := os.WriteFile(filepath.Join(dir, name), pdf, 0o644); err != nil {
		slog.Error("write certificate artifact", "file", name, "error", err)
		return ""
	}
	return "/artifacts/" + name
}
