// Package service implements the notification dispatch engine, the query
// surface, and the preference engine. Stores return infrastructure
// sentinels; everything surfaced from here carries a domain error code.
package service

import (
	"context"
	"time"

	"kolabo/internal/notification/models"
	"kolabo/pkg/domain"
)

// NotificationStore is the persistence contract the services need. Both the
// memory and postgres stores satisfy it.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	FindByID(ctx context.Context, id domain.NotificationID) (*models.Notification, error)
	HasDuplicate(ctx context.Context, recipient domain.Actor, typ models.Type, actor domain.Actor, dataKey string, dataValue any) (bool, error)
	ListByRecipient(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error)
	ListUnread(ctx context.Context, recipient domain.Actor) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipient domain.Actor) (int, error)
	ListSince(ctx context.Context, recipient domain.Actor, since time.Time) ([]*models.Notification, error)
	ListPage(ctx context.Context, recipient domain.Actor, limit, offset int) ([]*models.Notification, int, error)
	Update(ctx context.Context, n *models.Notification) error
	MarkAllRead(ctx context.Context, recipient domain.Actor, now time.Time) (int, error)
	Delete(ctx context.Context, id domain.NotificationID) error
	DeleteRead(ctx context.Context, recipient domain.Actor) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// PreferenceStore is the persistence contract for the sparse overrides.
type PreferenceStore interface {
	Find(ctx context.Context, owner domain.Actor, typ models.Type) (*models.NotificationPreference, error)
	ListByOwner(ctx context.Context, owner domain.Actor) ([]*models.NotificationPreference, error)
	Upsert(ctx context.Context, p *models.NotificationPreference) error
	SetAllForOwner(ctx context.Context, owner domain.Actor, enabled bool, now time.Time) (int, error)
}
