package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"kolabo/internal/notification/cache"
	"kolabo/internal/notification/events"
	"kolabo/internal/notification/metrics"
	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
	dErrors "kolabo/pkg/domain-errors"
	"kolabo/pkg/platform/sentinel"
	"kolabo/pkg/requestcontext"
)

// Dispatcher is the single entry point for emitting notifications. Every
// typed catalog operation routes through Create, which applies preference
// filtering and deduplication before persisting.
type Dispatcher struct {
	notifications NotificationStore
	preferences   PreferenceStore
	publisher     events.Publisher
	unread        *cache.UnreadCounts
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

// DispatcherOption configures optional collaborators.
type DispatcherOption func(*Dispatcher)

// WithPublisher attaches the event stream publisher. Publishing is best
// effort; failures are logged and counted, never returned.
func WithPublisher(p events.Publisher) DispatcherOption {
	return func(d *Dispatcher) { d.publisher = p }
}

// WithUnreadCache attaches the unread-count cache for invalidation.
func WithUnreadCache(c *cache.UnreadCounts) DispatcherOption {
	return func(d *Dispatcher) { d.unread = c }
}

// WithDispatchMetrics attaches the notification metrics.
func WithDispatchMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func NewDispatcher(notifications NotificationStore, preferences PreferenceStore, logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		notifications: notifications,
		preferences:   preferences,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateInput is the raw dispatch request assembled by the typed catalog
// operations (or, for system notices, by external schedulers).
type CreateInput struct {
	Recipient domain.Actor
	Actor     *domain.Actor
	Type      models.Type
	Titre     string
	Message   string
	Data      map[string]any
	ActionURL string
	// DedupKey names a Data field that narrows the duplicate check beyond
	// (recipient, type, actor). Empty means the triple alone decides.
	DedupKey string
}

// Create applies the dispatch pipeline: preference check (default-allow),
// dedup, persist, publish, cache invalidation. A (nil, nil) return means
// the notification was deliberately suppressed; callers must not treat it
// as a failure.
func (d *Dispatcher) Create(ctx context.Context, in CreateInput) (*models.Notification, error) {
	if err := in.Recipient.Validate(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid recipient")
	}
	if in.Recipient.Kind == domain.KindSystem {
		return nil, dErrors.New(dErrors.CodeValidation, "system cannot be a recipient")
	}
	if !in.Type.Valid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown notification type %q", in.Type)
	}

	enabled, err := d.isEnabled(ctx, in.Recipient, in.Type)
	if err != nil {
		return nil, err
	}
	if !enabled {
		d.metrics.ObserveSuppressed("preference")
		return nil, nil
	}

	if in.Actor != nil {
		var dedupValue any
		if in.DedupKey != "" {
			dedupValue = in.Data[in.DedupKey]
		}
		dup, err := d.notifications.HasDuplicate(ctx, in.Recipient, in.Type, *in.Actor, in.DedupKey, dedupValue)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate check failed")
		}
		if dup {
			d.metrics.ObserveSuppressed("duplicate")
			return nil, nil
		}
	}

	now := requestcontext.Now(ctx)
	n := &models.Notification{
		RecipientID:   in.Recipient.ID,
		RecipientType: in.Recipient.Kind,
		Type:          in.Type,
		Titre:         in.Titre,
		Message:       in.Message,
		Data:          in.Data,
		ActionURL:     in.ActionURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Actor != nil {
		n.SetActor(*in.Actor)
	}
	if err := d.notifications.Create(ctx, n); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist notification")
	}
	d.metrics.ObserveDispatched(string(in.Type))

	d.publish(ctx, n)
	if err := d.unread.Invalidate(ctx, in.Recipient); err != nil {
		d.logger.Warn("unread cache invalidation failed",
			"recipient", in.Recipient.String(), "error", err)
	}
	return n, nil
}

// isEnabled applies the default-allow rule: no stored row means enabled.
func (d *Dispatcher) isEnabled(ctx context.Context, owner domain.Actor, typ models.Type) (bool, error) {
	p, err := d.preferences.Find(ctx, owner, typ)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return true, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "preference lookup failed")
	}
	return p.IsEnabled, nil
}

func (d *Dispatcher) publish(ctx context.Context, n *models.Notification) {
	if d.publisher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		NotificationID: n.ID,
		Type:           n.Type,
		RecipientID:    n.RecipientID,
		RecipientType:  n.RecipientType,
		OccurredAt:     n.CreatedAt,
	}
	if err := d.publisher.Publish(ctx, event); err != nil {
		d.metrics.ObservePublishFailure()
		d.logger.Warn("notification event publish failed",
			"notification_id", n.ID, "type", n.Type, "error", err)
	}
}
