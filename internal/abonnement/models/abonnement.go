package models

import (
	"time"

	"kolabo/pkg/domain"
)

// Status of the subscription link. The partnership core only reads it.
type Status string

const (
	StatusActif    Status = "ACTIF"
	StatusSuspendu Status = "SUSPENDU"
	StatusResilie  Status = "RESILIE"
)

// Abonnement is the external link between exactly one User and one Societe.
// This core treats it as a read model: membership resolution for every
// partnership permission check goes through it, and nothing here creates or
// mutates subscriptions.
type Abonnement struct {
	ID        domain.AbonnementID `json:"id"`
	UserID    domain.UserID       `json:"user_id"`
	SocieteID domain.SocieteID    `json:"societe_id"`
	Status    Status              `json:"status"`
	Plan      string              `json:"plan"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// HasMember reports whether the actor is one of the two parties of this
// subscription. The kind must match the side; an id alone is never enough.
func (a *Abonnement) HasMember(actor domain.Actor) bool {
	switch actor.Kind {
	case domain.KindUser:
		return int64(a.UserID) == actor.ID
	case domain.KindSociete:
		return int64(a.SocieteID) == actor.ID
	}
	return false
}

// UserSide returns the individual party as an actor.
func (a *Abonnement) UserSide() domain.Actor { return domain.UserActor(a.UserID) }

// SocieteSide returns the organization party as an actor.
func (a *Abonnement) SocieteSide() domain.Actor { return domain.SocieteActor(a.SocieteID) }

// OtherParty returns the counterpart of the given member actor. The second
// return is false when the actor is not a member.
func (a *Abonnement) OtherParty(actor domain.Actor) (domain.Actor, bool) {
	if !a.HasMember(actor) {
		return domain.Actor{}, false
	}
	if actor.IsUser() {
		return a.SocieteSide(), true
	}
	return a.UserSide(), true
}
