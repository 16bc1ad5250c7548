package intakehandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrmsync/internal/domain/audit"
	"hrmsync/internal/domain/auth"
	"hrmsync/internal/domain/intake"
	"hrmsync/internal/domain/records"
	"hrmsync/internal/platform/metrics"
	"hrmsync/internal/transport/http/api"
	"hrmsync/internal/transport/http/middleware"
	"hrmsync/internal/transport/http/shared"
)

type Service interface {
	MigrateEmployee(ctx context.Context, tenantID, actorID string, emp records.Employee) (intake.MigrateResult, error)
	BulkMigrate(ctx context.Context, tenantID, employeeID, collection string, entries []json.RawMessage) (intake.BulkResult, error)
	ListEmployees(ctx context.Context, tenantID string, limit, offset int) ([]intake.EmployeeSummary, int, error)
}

type Auditor interface {
	Record(ctx context.Context, tenantID, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Service     Service
	Permissions middleware.PermissionStore
	Audit       Auditor
	Metrics     *metrics.Collector
}

func NewHandler(service Service, perms middleware.PermissionStore, auditor Auditor, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Permissions: perms, Audit: auditor, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	read := middleware.RequirePermission(auth.PermEmployeesRead, h.Permissions)
	migrate := middleware.RequirePermission(auth.PermEmployeesMigrate, h.Permissions)

	r.With(read).Get("/employees", h.handleListEmployees)
	r.With(migrate).Post("/employees/migrate", h.handleMigrateEmployee)
	r.With(migrate).Post("/{collection}/bulk-migrate", h.handleBulkMigrate)
}

func (h *Handler) handleMigrateEmployee(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	var emp records.Employee
	if !api.DecodeJSON(w, r, &emp, reqID) {
		h.recordEmployee(false)
		return
	}

	result, err := h.Service.MigrateEmployee(r.Context(), user.TenantID, user.UserID, emp)
	if err != nil {
		h.recordEmployee(false)
		if shared.Reject(w, reqID, err) {
			return
		}
		slog.Error("migrate employee failed", "err", err, "sourceId", emp.ID, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "migrate_failed", "failed to migrate employee", reqID)
		return
	}
	h.recordEmployee(true)
	h.audit(r, user, audit.ActionEmployeeMigrated, "employee", result.ID, map[string]any{"sourceId": result.SourceID, "created": result.Created, "batchId": middleware.GetBatchID(r.Context())})

	if result.Created {
		api.Created(w, result, reqID)
		return
	}
	api.Success(w, result, reqID)
}

func (h *Handler) handleBulkMigrate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())

	collection, ok := records.CollectionFromSlug(chi.URLParam(r, "collection"))
	if !ok {
		api.Fail(w, http.StatusNotFound, "not_found", "unknown collection", reqID)
		return
	}

	var body map[string]json.RawMessage
	if !api.DecodeJSON(w, r, &body, reqID) {
		return
	}
	var employeeID string
	var entries []json.RawMessage
	verr := &intake.ValidationError{}
	if err := json.Unmarshal(body["employeeId"], &employeeID); err != nil || strings.TrimSpace(employeeID) == "" {
		verr.Issues = append(verr.Issues, intake.FieldIssue{Field: "employeeId", Reason: "is required"})
	}
	if raw, ok := body[collection]; !ok || json.Unmarshal(raw, &entries) != nil {
		verr.Issues = append(verr.Issues, intake.FieldIssue{Field: collection, Reason: "must be an array"})
	}
	if shared.Reject(w, reqID, verr) {
		return
	}

	result, err := h.Service.BulkMigrate(r.Context(), user.TenantID, employeeID, collection, entries)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrEmployeeNotFound):
			api.Fail(w, http.StatusNotFound, "not_found", "employee not found", reqID)
		case errors.Is(err, intake.ErrUnknownCollection):
			api.Fail(w, http.StatusNotFound, "not_found", "unknown collection", reqID)
		default:
			slog.Error("bulk migrate failed", "err", err, "collection", collection, "employeeId", employeeID, "requestId", reqID)
			api.Fail(w, http.StatusInternalServerError, "migrate_failed", "failed to migrate entries", reqID)
		}
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordEntries(result.Accepted, result.Rejected)
	}
	h.audit(r, user, audit.ActionEntriesMigrated, collection, employeeID, map[string]any{"accepted": result.Accepted, "rejected": result.Rejected, "batchId": middleware.GetBatchID(r.Context())})
	api.Success(w, result, reqID)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	reqID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	items, total, err := h.Service.ListEmployees(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		slog.Error("list employees failed", "err", err, "requestId", reqID)
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list employees", reqID)
		return
	}
	api.Success(w, shared.NewPage(items, total, page), reqID)
}

func (h *Handler) recordEmployee(ok bool) {
	if h.Metrics != nil {
		h.Metrics.RecordEmployee(ok)
	}
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityType, entityID string, after any) {
	if h.Audit == nil {
		return
	}
	err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, middleware.GetRequestID(r.Context()), r.RemoteAddr, nil, after)
	if err != nil {
		slog.Warn("audit failed", "action", action, "entityId", entityID, "err", err)
	}
}
