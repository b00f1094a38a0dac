// Package handler exposes the notification pull surface and the preference
// endpoints over HTTP. The recipient is always the authenticated actor; no
// route accepts a recipient parameter.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"kolabo/internal/notification/models"
	"kolabo/internal/notification/service"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/httputil"
	"kolabo/pkg/requestcontext"
)

// QueryService defines the notification read and lifecycle operations.
type QueryService interface {
	ListForRecipient(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error)
	Unread(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error)
	UnreadCount(ctx context.Context, recipient domain.Actor) (int, error)
	Recent(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error)
	Paginated(ctx context.Context, recipient domain.Actor, page, limit int) (*service.Page, error)
	MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.Actor) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipient domain.Actor) (int, error)
	Delete(ctx context.Context, id domain.NotificationID, recipient domain.Actor) error
	DeleteRead(ctx context.Context, recipient domain.Actor) (int, error)
}

// PreferenceService defines the per-owner preference operations.
type PreferenceService interface {
	Set(ctx context.Context, owner domain.Actor, typ models.Type, enabled bool) (*models.NotificationPreference, error)
	EnableAll(ctx context.Context, owner domain.Actor) (int, error)
	DisableAll(ctx context.Context, owner domain.Actor) (int, error)
	AllWithDefaults(ctx context.Context, owner domain.Actor) ([]models.TypePreference, error)
}

// Handler wires notification endpoints to the query and preference services.
type Handler struct {
	queries     QueryService
	preferences PreferenceService
	logger      *slog.Logger
}

func New(queries QueryService, preferences PreferenceService, logger *slog.Logger) *Handler {
	return &Handler{queries: queries, preferences: preferences, logger: logger}
}

// Register mounts the notification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread", h.HandleUnread)
	r.Get("/notifications/unread/count", h.HandleUnreadCount)
	r.Get("/notifications/recent", h.HandleRecent)
	r.Post("/notifications/read-all", h.HandleMarkAllRead)
	r.Post("/notifications/{notificationID}/read", h.HandleMarkRead)
	r.Delete("/notifications/read", h.HandleDeleteRead)
	r.Delete("/notifications/{notificationID}", h.HandleDelete)

	r.Get("/notification-preferences", h.HandleListPreferences)
	r.Put("/notification-preferences/{type}", h.HandleSetPreference)
	r.Post("/notification-preferences/enable-all", h.HandleEnableAll)
	r.Post("/notification-preferences/disable-all", h.HandleDisableAll)
}

// HandleList handles GET /notifications. With page or limit query params the
// result is one page with totals; without them, the full list newest first.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recipient := requestcontext.Actor(ctx)

	q := r.URL.Query()
	if q.Get("page") != "" || q.Get("limit") != "" {
		page, _ := strconv.Atoi(q.Get("page"))
		limit, _ := strconv.Atoi(q.Get("limit"))
		result, err := h.queries.Paginated(ctx, recipient, page, limit)
		if err != nil {
			h.logError(ctx, "notification paging failed", err)
			httputil.WriteError(w, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, result)
		return
	}

	list, err := h.queries.ListForRecipient(ctx, recipient)
	if err != nil {
		h.logError(ctx, "notification listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleUnread handles GET /notifications/unread.
func (h *Handler) HandleUnread(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.queries.Unread(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleUnreadCount handles GET /notifications/unread/count.
func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.queries.UnreadCount(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

// HandleRecent handles GET /notifications/recent.
func (h *Handler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.queries.Recent(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleMarkRead handles POST /notifications/{notificationID}/read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}
	n, err := h.queries.MarkRead(ctx, domain.NotificationID(id), requestcontext.Actor(ctx))
	if err != nil {
		h.logError(ctx, "mark read failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

// HandleMarkAllRead handles POST /notifications/read-all.
func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.queries.MarkAllRead(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.logError(ctx, "mark all read failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

// HandleDelete handles DELETE /notifications/{notificationID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}
	if err := h.queries.Delete(ctx, domain.NotificationID(id), requestcontext.Actor(ctx)); err != nil {
		h.logError(ctx, "notification deletion failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteRead handles DELETE /notifications/read.
func (h *Handler) HandleDeleteRead(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.queries.DeleteRead(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.logError(ctx, "read notification cleanup failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

// =============================================================================
// Preferences
// =============================================================================

// HandleListPreferences handles GET /notification-preferences: the full type
// catalog with each effective flag.
func (h *Handler) HandleListPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	prefs, err := h.preferences.AllWithDefaults(ctx, requestcontext.Actor(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, prefs)
}

// HandleSetPreference handles PUT /notification-preferences/{type}.
func (h *Handler) HandleSetPreference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typ := models.Type(chi.URLParam(r, "type"))
	req, ok := httputil.DecodeAndPrepare[SetPreferenceRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	pref, err := h.preferences.Set(ctx, requestcontext.Actor(ctx), typ, *req.IsEnabled)
	if err != nil {
		h.logError(ctx, "preference update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pref)
}

// HandleEnableAll handles POST /notification-preferences/enable-all.
func (h *Handler) HandleEnableAll(w http.ResponseWriter, r *http.Request) {
	h.bulkPreference(w, r, h.preferences.EnableAll)
}

// HandleDisableAll handles POST /notification-preferences/disable-all.
func (h *Handler) HandleDisableAll(w http.ResponseWriter, r *http.Request) {
	h.bulkPreference(w, r, h.preferences.DisableAll)
}

func (h *Handler) bulkPreference(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.Actor) (int, error)) {
	ctx := r.Context()
	count, err := op(ctx, requestcontext.Actor(ctx))
	if err != nil {
		h.logError(ctx, "bulk preference update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"actor", requestcontext.Actor(ctx).String(),
		"error", err,
	)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name))
		return 0, false
	}
	return id, true
}

// SetPreferenceRequest is the body for PUT /notification-preferences/{type}.
type SetPreferenceRequest struct {
	IsEnabled *bool `json:"is_enabled"`
}

func (r *SetPreferenceRequest) Validate() error {
	if r.IsEnabled == nil {
		return dErrors.New(dErrors.CodeValidation, "is_enabled is required")
	}
	return nil
}

// CountResponse wraps a bare count.
type CountResponse struct {
	Count int `json:"count"`
}
