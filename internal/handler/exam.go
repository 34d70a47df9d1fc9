package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techops-academy/certifier/internal/exam"
	appI18n "github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/model"
)

// handleExamConfig exposes the sampling configuration the next attempt will
// use. An unreadable config is served as the defaults, never as an error.
func (h *Handler) handleExamConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.examConfig()
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "config": cfg})
}

// examConfig fetches the stored config, falling back to the defaults on any
// failure. The fallback is logged but invisible to the trainee: an exam with
// default sampling beats no exam.
func (h *Handler) examConfig() model.ExamConfig {
	cfg, err := h.store.GetExamConfig()
	if err != nil {
		slog.Warn("exam config unavailable, using defaults", "error", err)
		return model.DefaultExamConfig()
	}
	return cfg
}

func (h *Handler) handleStartExam(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	bank, err := h.store.ListQuestions()
	if err != nil {
		slog.Error("list questions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	selection := exam.SelectQuestions(bank, h.examConfig(), exam.NewRand())
	if len(selection) == 0 {
		// An empty bank is an operational condition, not a server fault.
		slog.Warn("empty question selection", "bank_size", len(bank))
		respondJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"error":   appI18n.T(r.Context(), "ErrExamUnavailable"),
		})
		return
	}

	cases, err := h.store.ListSimulationCases()
	if err != nil {
		slog.Error("list simulation cases", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	sess, err := exam.NewSession(user.Name, user.Email, selection, cases)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	id := h.registry.Add(sess)
	slog.Info("exam started", "session_id", id, "user_id", user.ID,
		"questions", len(selection), "cases", len(cases))

	respondJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"sessionId":      id,
		"totalQuestions": len(selection),
		"totalCases":     len(cases),
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *exam.Session {
	sess := h.registry.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		respondError(w, http.StatusNotFound, "exam session not found")
	}
	return sess
}

// handleQuestion serves the current theory question with the answer key
// stripped.
func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	q, num, total, err := sess.CurrentQuestion()
	if err != nil {
		respondError(w, http.StatusConflict, "no question awaiting an answer")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"question": map[string]any{
			"id":      q.ID,
			"type":    q.Type,
			"text":    q.Text,
			"options": q.Options,
		},
		"number": num,
		"total":  total,
	})
}

type answerRequest struct {
	Selected *int    `json:"selected"`
	Answer   *string `json:"answer"`
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var rec model.AnswerRecord
	var err error
	switch {
	case req.Answer != nil:
		rec, err = sess.AnswerFreeText(*req.Answer)
	case req.Selected != nil:
		rec, err = sess.AnswerMultiple(*req.Selected)
	default:
		respondError(w, http.StatusBadRequest, "selected or answer is required")
		return
	}
	if err != nil {
		if errors.Is(err, exam.ErrWrongState) {
			respondError(w, http.StatusConflict, "theory stage is not active")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"correct": rec.Correct,
		"record":  rec,
		"state":   sess.State(),
	})
}

func (h *Handler) handleCase(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	sc, num, total, err := sess.CurrentCase()
	if err != nil {
		respondError(w, http.StatusConflict, "no case awaiting a decision")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"case": map[string]any{
			"id":          sc.ID,
			"title":       sc.Title,
			"meta":        sc.Meta,
			"description": sc.Description,
		},
		"number": num,
		"total":  total,
	})
}

type decideRequest struct {
	Action model.SimulationDecision `json:"action"`
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	var req decideRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	rec, err := sess.Decide(req.Action)
	if err != nil {
		if errors.Is(err, exam.ErrWrongState) {
			respondError(w, http.StatusConflict, "simulation stage is not active")
			return
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"correct": rec.Correct,
		"record":  rec,
		"state":   sess.State(),
	})
}

func (h *Handler) handleScores(w http.ResponseWriter, r *http.Request) {
	sess := h.session(w, r)
	if sess == nil {
		return
	}
	theory, sim := sess.Scores()
	respondJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"theoryPercent":     theory,
		"simulationPercent": sim,
		"passed":            exam.OverallPassed(theory, sim),
		"state":             sess.State(),
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	sessionID := chi.URLParam(r, "sessionID")
	sess := h.session(w, r)
	if sess == nil {
		return
	}

	recorder := h.recorderFor(user)
	out := exam.NewSubmitter(recorder).Submit(r.Context(), sess)

	switch {
	case out.Err != nil && errors.Is(out.Err, exam.ErrWrongState):
		respondError(w, http.StatusConflict, "exam is not finished")
	case out.Err != nil:
		slog.Error("submit attempt", "session_id", sessionID, "user_id", user.ID, "error", out.Err)
		respondError(w, http.StatusBadGateway, "submission failed, please retry")
	case out.Duplicate:
		respondJSON(w, http.StatusOK, map[string]any{"success": true, "duplicate": true})
	default:
		h.registry.Remove(sessionID)
		slog.Info("exam submitted", "session_id", sessionID, "user_id", user.ID,
			"attempt_no", out.AttemptNo)
		respondJSON(w, http.StatusOK, map[string]any{
			"success":      true,
			"attemptNo":    out.AttemptNo,
			"emailPreview": out.ArtifactPreviewURL,
		})
	}
}
