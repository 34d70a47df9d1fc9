package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/techops-academy/certifier/internal/exam"
	appI18n "github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/mailer"
	"github.com/techops-academy/certifier/internal/model"
	"github.com/techops-academy/certifier/internal/store"
)

// Config holds the handler-level settings.
type Config struct {
	// ExamType labels stored attempts, e.g. "L1 Support".
	ExamType string
	// ArtifactsDir is where generated certificate PDFs are written and
	// served from.
	ArtifactsDir string
	// DefaultLang is the fallback response language.
	DefaultLang string
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	registry *exam.Registry
	mailer   *mailer.Mailer
	config   Config
}

// New creates a new Handler.
func New(s *store.Store, reg *exam.Registry, m *mailer.Mailer, cfg Config) *Handler {
	if cfg.ExamType == "" {
		cfg.ExamType = "L1 Support"
	}
	if cfg.DefaultLang == "" {
		cfg.DefaultLang = "hu"
	}
	return &Handler{store: s, registry: reg, mailer: m, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Use(appI18n.Middleware(h.config.DefaultLang))

	r.Post("/api/register", h.handleRegister)
	r.Post("/api/login", h.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Get("/api/me", h.handleMe)
		r.Post("/api/logout", h.handleLogout)

		r.Get("/api/modules", h.handleModules)
		r.Get("/api/progress", h.handleGetProgress)
		r.Post("/api/progress", h.handleSaveProgress)

		r.Get("/api/exam/config", h.handleExamConfig)
		r.Post("/api/exam/start", h.handleStartExam)
		r.Get("/api/exam/{sessionID}/question", h.handleQuestion)
		r.Post("/api/exam/{sessionID}/answer", h.handleAnswer)
		r.Get("/api/exam/{sessionID}/case", h.handleCase)
		r.Post("/api/exam/{sessionID}/decide", h.handleDecide)
		r.Get("/api/exam/{sessionID}/scores", h.handleScores)
		r.Post("/api/exam/{sessionID}/submit", h.handleSubmit)

		r.Get("/api/me/attempts", h.handleMyAttempts)

		r.Handle("/artifacts/*", http.StripPrefix("/artifacts/",
			http.FileServer(http.Dir(h.config.ArtifactsDir))))

		r.Group(func(r chi.Router) {
			r.Use(requireRole(model.UserRoleTrainer, model.UserRoleAdmin))
			r.Get("/api/dashboard", h.handleDashboard)
			r.Get("/api/attempts", h.handleAllAttempts)
		})
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"success": false, "error": msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *Handler) handleModules(w http.ResponseWriter, r *http.Request) {
	modules, err := h.store.ListModules(r.URL.Query().Get("track"))
	if err != nil {
		slog.Error("list modules", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if modules == nil {
		modules = []model.Module{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "modules": modules})
}

// handleSaveProgress is fire-and-forget from the trainee's point of view: a
// storage failure is logged, the earned XP is never rolled back client-side,
// and the next save retries the same upsert.
func (h *Handler) handleSaveProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	var p model.Progress
	if !decodeJSON(w, r, &p) {
		return
	}
	p.UserID = user.ID

	if err := h.store.UpsertProgress(p); err != nil {
		slog.Error("save progress", "user_id", user.ID, "module_id", p.ModuleID, "error", err)
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleGetProgress(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())

	progress, err := h.store.ListProgress(user.ID)
	if err != nil {
		slog.Error("list progress", "user_id", user.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if progress == nil {
		progress = []model.Progress{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "progress": progress})
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.store.DashboardSummary()
	if err != nil {
		slog.Error("dashboard summary", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if summary == nil {
		summary = []model.TraineeSummary{}
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "items": summary})
}

func (h *Handler) handleMyAttempts(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	h.respondAttempts(w, func() ([]model.ExamAttempt, error) {
		return h.store.ListAttempts(user.ID)
	})
}

func (h *Handler) handleAllAttempts(w http.ResponseWriter, r *http.Request) {
	h.respondAttempts(w, h.store.ListAllAttempts)
}

func (h *Handler) respondAttempts(w http.ResponseWriter, list func() ([]model.ExamAttempt, error)) {
	attempts, err := list()
	if err != nil {
		slog.Error("list attempts", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	type attemptView struct {
		ID                int64  `json:"id"`
		ExamType          string `json:"examType"`
		Score             int    `json:"score"`
		Passed            bool   `json:"passed"`
		TheoryPercent     int    `json:"theoryPercent"`
		SimulationPercent int    `json:"simulationPercent"`
		AttemptNo         int    `json:"attemptNo"`
		DurationSeconds   int    `json:"durationSeconds"`
		FinishedAt        string `json:"finishedAt"`
	}
	views := make([]attemptView, 0, len(attempts))
	for _, a := range attempts {
		views = append(views, attemptView{
			ID:                a.ID,
			ExamType:          a.ExamType,
			Score:             a.Score,
			Passed:            a.Passed,
			TheoryPercent:     a.TheoryPercent,
			SimulationPercent: a.SimulationPercent,
			AttemptNo:         a.AttemptNo,
			DurationSeconds:   a.DurationSeconds,
			FinishedAt:        a.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "attempts": views})
}
