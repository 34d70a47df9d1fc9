package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	appI18n "github.com/techops-academy/certifier/internal/i18n"
	"github.com/techops-academy/certifier/internal/model"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Name = strings.TrimSpace(req.Name)
	if req.Email == "" || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name and email are required")
		return
	}

	existing, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		slog.Error("lookup user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, appI18n.T(r.Context(), "ErrEmailTaken"))
		return
	}

	u := model.User{Email: req.Email, Name: req.Name, Role: model.UserRoleTrainee}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			slog.Error("hash password", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
			return
		}
		u.PasswordHash = string(hash)
	}

	id, err := h.store.CreateUser(u)
	if err != nil {
		slog.Error("create user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	token, err := h.store.CreateAuthSession(id)
	if err != nil {
		slog.Error("create auth session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    userView(model.User{ID: id, Email: u.Email, Name: u.Name, Role: u.Role}),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		slog.Error("lookup user", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrInvalidCredentials"))
		return
	}

	// Trainee accounts created without a password log in with email alone;
	// trainer and admin accounts always require one.
	if user.PasswordHash != "" || user.Role != model.UserRoleTrainee {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrInvalidCredentials"))
			return
		}
	}

	token, err := h.store.CreateAuthSession(user.ID)
	if err != nil {
		slog.Error("create auth session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"token":   token,
		"user":    userView(*user),
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := bearerToken(r); token != "" {
		_ = h.store.DeleteAuthSession(token)
	}
	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := model.UserFromContext(r.Context())
	respondJSON(w, http.StatusOK, map[string]any{"success": true, "user": userView(*user)})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return after
	}
	return ""
}

// requireAuth is middleware that resolves the Bearer token to a user.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrUnauthorized"))
			return
		}

		authSess, err := h.store.GetAuthSession(token)
		if err != nil {
			slog.Error("get auth session", "error", err)
			respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrUnauthorized"))
			return
		}
		if authSess == nil {
			respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrUnauthorized"))
			return
		}

		user, err := h.store.GetUserByID(authSess.UserID)
		if err != nil || user == nil {
			respondError(w, http.StatusUnauthorized, appI18n.T(r.Context(), "ErrUnauthorized"))
			return
		}

		ctx := model.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireRole returns middleware that checks the user has one of the allowed roles.
func requireRole(allowed ...model.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := model.UserFromContext(r.Context())
			if user == nil {
				respondError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			for _, role := range allowed {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, http.StatusForbidden, "forbidden")
		})
	}
}

func userView(u model.User) map[string]any {
	return map[string]any{
		"id":    u.ID,
		"name":  u.Name,
		"email": u.Email,
		"role":  u.Role,
	}
}
