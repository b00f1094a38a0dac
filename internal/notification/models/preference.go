package models

import (
	"time"

	"kolabo/pkg/domain"
)

// NotificationPreference is a sparse per-owner, per-type override. Absence
// of a row means enabled; rows are created lazily on the first explicit
// change and never auto-deleted.
type NotificationPreference struct {
	ID        domain.PreferenceID `json:"id"`
	OwnerID   int64               `json:"owner_id"`
	OwnerType domain.ActorKind    `json:"owner_type"`
	Type      Type                `json:"notification_type"`
	IsEnabled bool                `json:"is_enabled"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// Owner returns the preference owner as an actor pair.
func (p *NotificationPreference) Owner() domain.Actor {
	return domain.NewActor(p.OwnerID, p.OwnerType)
}

// TypePreference pairs a catalog type with its effective flag, stored or
// defaulted. It is the unit of the all-with-defaults listing.
type TypePreference struct {
	Type      Type `json:"notification_type"`
	IsEnabled bool `json:"is_enabled"`
}
