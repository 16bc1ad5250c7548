package authhandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"hrmsync/internal/domain/audit"
	"hrmsync/internal/domain/auth"
	"hrmsync/internal/transport/http/api"
	"hrmsync/internal/transport/http/middleware"
	"hrmsync/internal/transport/http/shared"
)

type UserStore interface {
	FindActiveUserByEmail(ctx context.Context, email string) (auth.AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
}

type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Users    UserStore
	Audit    Auditor
	Secret   string
	TokenTTL time.Duration
}

func NewHandler(users UserStore, auditor Auditor, secret string, ttl time.Duration) *Handler {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Handler{Users: users, Audit: auditor, Secret: secret, TokenTTL: ttl}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Get("/auth/me", h.HandleMe)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID       string `json:"id"`
	TenantID string `json:"tenantId"`
	RoleID   string `json:"roleId,omitempty"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	var payload loginRequest
	if !api.DecodeJSON(w, r, &payload, reqID) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(payload.Email))

	var issues shared.FieldIssues
	issues.Require("email", email)
	issues.Require("password", payload.Password)
	if shared.Reject(w, reqID, issues) {
		return
	}

	user, err := h.Users.FindActiveUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			slog.Error("login lookup failed", "err", err, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "login_failed", "login failed", reqID)
			return
		}
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}
	if err := auth.CheckPassword(user.Password, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", reqID)
		return
	}

	expiresAt := time.Now().Add(h.TokenTTL).UTC()
	token, err := auth.GenerateToken(h.Secret, auth.Claims{
		UserID:   user.ID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}, h.TokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", reqID)
		return
	}

	if err := h.Users.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.TenantID, user.ID, audit.ActionLogin, "user", user.ID, reqID, r.RemoteAddr, nil, nil); err != nil {
			slog.Warn("audit login failed", "userId", user.ID, "err", err)
		}
	}

	api.Success(w, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userResponse{ID: user.ID, TenantID: user.TenantID, RoleID: user.RoleID, Role: user.RoleName},
	}, reqID)
}

func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, userResponse{ID: user.UserID, TenantID: user.TenantID, RoleID: user.RoleID, Role: user.RoleName}, middleware.GetRequestID(r.Context()))
}
