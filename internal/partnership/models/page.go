// Package models holds the partnership entities and their permission
// predicates. Predicates take the actor and the resolved abonnement as
// explicit parameters; entities never reach into storage themselves.
package models

import (
	"time"

	"github.com/shopspring/decimal"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
)

// Visibility of a partnership page. Only PRIVATE exists today; the type is
// kept so a public visibility can be added without a schema break.
type Visibility string

const VisibilityPrivate Visibility = "PRIVATE"

// PagePartenariat is the shared surface of one subscription-based
// partnership.
//
// Invariants:
//   - Exactly one page per abonnement (abonnement_id unique).
//   - Accessible only to the two parties of the owning abonnement.
//   - TotalTransactions / MontantTotal are derived from the VALIDATED
//     transaction set and recomputed from source, never incremented.
type PagePartenariat struct {
	ID                   domain.PageID       `json:"id"`
	AbonnementID         domain.AbonnementID `json:"abonnement_id"`
	Titre                string              `json:"titre"`
	Description          string              `json:"description"`
	Logo                 string              `json:"logo"`
	Couleur              string              `json:"couleur"`
	TotalTransactions    int                 `json:"total_transactions"`
	MontantTotal         decimal.Decimal     `json:"montant_total"`
	DateDebutPartenariat time.Time           `json:"date_debut_partenariat"`
	DerniereTransaction  *time.Time          `json:"derniere_transaction_at,omitempty"`
	Visibilite           Visibility          `json:"visibilite"`
	Secteur              string              `json:"secteur"`
	IsActive             bool                `json:"is_active"`
	Metadata             map[string]any      `json:"metadata,omitempty"`
	CreatedAt            time.Time           `json:"created_at"`
	UpdatedAt            time.Time           `json:"updated_at"`
}

// NewPage builds the page created when a subscription is established.
func NewPage(ab *abmodels.Abonnement, titre string, now time.Time) *PagePartenariat {
	return &PagePartenariat{
		AbonnementID:         ab.ID,
		Titre:                titre,
		MontantTotal:         decimal.Zero,
		DateDebutPartenariat: now,
		Visibilite:           VisibilityPrivate,
		IsActive:             true,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

// CanBeAccessedBy is the sole gate for page reads and updates: the actor
// must be one of the two parties of the owning abonnement.
func (p *PagePartenariat) CanBeAccessedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	return ab != nil && ab.ID == p.AbonnementID && ab.HasMember(actor)
}

// UpdateStats sets the derived aggregate fields. Callers recompute count and
// total from the authoritative transaction set; incrementing here would
// drift under concurrent validations and deletions.
func (p *PagePartenariat) UpdateStats(count int, total decimal.Decimal, lastAt *time.Time) {
	p.TotalTransactions = count
	p.MontantTotal = total
	p.DerniereTransaction = lastAt
}

// PageUpdate carries the optional page fields either party may change.
// Nil means "leave untouched".
type PageUpdate struct {
	Titre       *string `json:"titre,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	Couleur     *string `json:"couleur,omitempty"`
}

// Apply mutates only the supplied fields.
func (p *PagePartenariat) Apply(u PageUpdate, now time.Time) {
	if u.Titre != nil {
		p.Titre = *u.Titre
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Logo != nil {
		p.Logo = *u.Logo
	}
	if u.Couleur != nil {
		p.Couleur = *u.Couleur
	}
	p.UpdatedAt = now
}
