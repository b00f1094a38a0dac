// Package models holds the notification entities. A notification's recipient
// is always a User or Societe; the actor is the polymorphic origin of the
// event and may be absent for pure system notices.
package models

import (
	"time"

	"kolabo/pkg/domain"
)

// Notification is one catalogued event record with read state.
//
// Invariants:
//   - A notification always has a recipient.
//   - IsRead transitions false to true exactly once; ReadAt is set at that
//     transition and never moves afterwards.
type Notification struct {
	ID            domain.NotificationID `json:"id"`
	RecipientID   int64                 `json:"recipient_id"`
	RecipientType domain.ActorKind      `json:"recipient_type"`
	ActorID       *int64                `json:"actor_id,omitempty"`
	ActorType     *domain.ActorKind     `json:"actor_type,omitempty"`
	Type          Type                  `json:"type"`
	Titre         string                `json:"titre"`
	Message       string                `json:"message"`
	Data          map[string]any        `json:"data,omitempty"`
	ActionURL     string                `json:"action_url,omitempty"`
	IsRead        bool                  `json:"is_read"`
	ReadAt        *time.Time            `json:"read_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Recipient returns the destination as an actor pair.
func (n *Notification) Recipient() domain.Actor {
	return domain.NewActor(n.RecipientID, n.RecipientType)
}

// SetActor records the polymorphic origin of the event.
func (n *Notification) SetActor(actor domain.Actor) {
	id := actor.ID
	kind := actor.Kind
	n.ActorID = &id
	n.ActorType = &kind
}

// Actor returns the origin actor; ok is false for pure system notices.
func (n *Notification) Actor() (domain.Actor, bool) {
	if n.ActorID == nil || n.ActorType == nil {
		return domain.Actor{}, false
	}
	return domain.NewActor(*n.ActorID, *n.ActorType), true
}

// BelongsTo reports whether the notification is addressed to the actor.
// Lookups that fail this check surface NotFound, never Forbidden, so a
// foreign id does not leak the record's existence.
func (n *Notification) BelongsTo(actor domain.Actor) bool {
	return n.RecipientID == actor.ID && n.RecipientType == actor.Kind
}

// MarkRead performs the one-way read transition. The second and later calls
// are no-ops that leave ReadAt untouched; the return reports whether this
// call performed the transition.
func (n *Notification) MarkRead(now time.Time) bool {
	if n.IsRead {
		return false
	}
	n.IsRead = true
	n.ReadAt = &now
	n.UpdatedAt = now
	return true
}
