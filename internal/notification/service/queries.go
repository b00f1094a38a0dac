package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"kolabo/internal/notification/cache"
	"kolabo/internal/notification/metrics"
	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/requestcontext"
)

// RecentWindow is the lookback for the "recent" listing. The 24h boundary
// is inclusive.
const RecentWindow = 24 * time.Hour

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// QueryService is the pull surface over a recipient's notifications. Every
// single-record operation checks ownership and answers NotFound for foreign
// rows; a foreign id must be indistinguishable from a missing one.
type QueryService struct {
	store   NotificationStore
	unread  *cache.UnreadCounts
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// QueryOption configures optional collaborators.
type QueryOption func(*QueryService)

func WithQueryUnreadCache(c *cache.UnreadCounts) QueryOption {
	return func(s *QueryService) { s.unread = c }
}

func WithQueryMetrics(m *metrics.Metrics) QueryOption {
	return func(s *QueryService) { s.metrics = m }
}

func NewQueryService(store NotificationStore, logger *slog.Logger, opts ...QueryOption) *QueryService {
	s := &QueryService{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListForRecipient returns every notification of the recipient, newest first.
func (s *QueryService) ListForRecipient(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	list, err := s.store.ListByRecipient(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list notifications")
	}
	return list, nil
}

// Unread returns the unread notifications, newest first.
func (s *QueryService) Unread(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	list, err := s.store.ListUnread(ctx, recipient)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list unread notifications")
	}
	return list, nil
}

// UnreadCount returns the unread count, served from the cache when warm.
// The store stays authoritative; cache errors degrade to a store read.
func (s *QueryService) UnreadCount(ctx context.Context, recipient domain.Actor) (int, error) {
	count, hit, err := s.unread.Get(ctx, recipient)
	if err != nil {
		s.logger.Warn("unread cache read failed", "recipient", recipient.String(), "error", err)
	} else if hit {
		s.metrics.ObserveUnreadCache("hit")
		return count, nil
	}
	s.metrics.ObserveUnreadCache("miss")

	count, err = s.store.CountUnread(ctx, recipient)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "count unread notifications")
	}
	if err := s.unread.Set(ctx, recipient, count); err != nil {
		s.logger.Warn("unread cache write failed", "recipient", recipient.String(), "error", err)
	}
	return count, nil
}

// Recent returns the notifications created within the last 24 hours,
// boundary inclusive, newest first.
func (s *QueryService) Recent(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error) {
	since := requestcontext.Now(ctx).Add(-RecentWindow)
	list, err := s.store.ListSince(ctx, recipient, since)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list recent notifications")
	}
	return list, nil
}

// Page is one page of a recipient's notifications.
type Page struct {
	Items      []*models.Notification `json:"items"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

// Paginated returns one page, newest first. Page numbering starts at 1;
// out-of-range limits are clamped.
func (s *QueryService) Paginated(ctx context.Context, recipient domain.Actor, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	items, total, err := s.store.ListPage(ctx, recipient, limit, (page-1)*limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "page notifications")
	}
	totalPages := (total + limit - 1) / limit
	return &Page{Items: items, Total: total, Page: page, Limit: limit, TotalPages: totalPages}, nil
}

// MarkRead performs the idempotent read transition on one notification.
func (s *QueryService) MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.Actor) (*models.Notification, error) {
	n, err := s.findOwned(ctx, id, recipient)
	if err != nil {
		return nil, err
	}
	if !n.MarkRead(requestcontext.Now(ctx)) {
		return n, nil
	}
	if err := s.store.Update(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "mark notification read")
	}
	s.invalidateUnread(ctx, recipient)
	return n, nil
}

// MarkAllRead reads every unread notification of the recipient.
func (s *QueryService) MarkAllRead(ctx context.Context, recipient domain.Actor) (int, error) {
	count, err := s.store.MarkAllRead(ctx, recipient, requestcontext.Now(ctx))
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "mark all notifications read")
	}
	s.invalidateUnread(ctx, recipient)
	return count, nil
}

// Delete removes one notification of the recipient.
func (s *QueryService) Delete(ctx context.Context, id domain.NotificationID, recipient domain.Actor) error {
	n, err := s.findOwned(ctx, id, recipient)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, n.ID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete notification")
	}
	if !n.IsRead {
		s.invalidateUnread(ctx, recipient)
	}
	return nil
}

// DeleteRead removes every read notification of the recipient and returns
// how many were removed.
func (s *QueryService) DeleteRead(ctx context.Context, recipient domain.Actor) (int, error) {
	count, err := s.store.DeleteRead(ctx, recipient)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "delete read notifications")
	}
	return count, nil
}

// PurgeOlderThan removes notifications older than the given number of days,
// across all recipients. The retention sweep is triggered externally.
func (s *QueryService) PurgeOlderThan(ctx context.Context, days int) (int, error) {
	if days <= 0 {
		return 0, dErrors.New(dErrors.CodeValidation, "retention days must be positive")
	}
	cutoff := requestcontext.Now(ctx).Add(-time.Duration(days) * 24 * time.Hour)
	count, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "purge notifications")
	}
	return count, nil
}

// findOwned resolves a notification and enforces ownership. Foreign rows
// surface NotFound, never Forbidden.
func (s *QueryService) findOwned(ctx context.Context, id domain.NotificationID, recipient domain.Actor) (*models.Notification, error) {
	n, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "load notification")
	}
	if !n.BelongsTo(recipient) {
		return nil, dErrors.New(dErrors.CodeNotFound, "notification not found")
	}
	return n, nil
}

func (s *QueryService) invalidateUnread(ctx context.Context, recipient domain.Actor) {
	if err := s.unread.Invalidate(ctx, recipient); err != nil {
		s.logger.Warn("unread cache invalidation failed", "recipient", recipient.String(), "error", err)
	}
}
