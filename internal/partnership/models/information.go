package models

import (
	"time"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
)

// ModifiablePar is the declared edit policy of an information record.
type ModifiablePar string

const (
	ModifiableParUser    ModifiablePar = "USER"
	ModifiableParSociete ModifiablePar = "SOCIETE"
	ModifiableParLesDeux ModifiablePar = "LES_DEUX"
)

func (m ModifiablePar) Valid() bool {
	switch m {
	case ModifiableParUser, ModifiableParSociete, ModifiableParLesDeux:
		return true
	}
	return false
}

// InformationPartenaire is the per-partner descriptive profile attached to a
// page. At most one record exists per (page, partenaire_id, partenaire_type);
// the store enforces a composite unique key as the backstop for concurrent
// creation.
//
// CreeePar is stamped from the creator's kind at creation and is immutable
// thereafter. The update and delete paths are ownership-scoped (creator
// only), which is deliberately stricter than the ModifiablePar policy; see
// CanBeModifiedBy vs CanBeModifiedByOwner.
type InformationPartenaire struct {
	ID             domain.InformationID `json:"id"`
	PageID         domain.PageID        `json:"page_partenariat_id"`
	PartenaireID   int64                `json:"partenaire_id"`
	PartenaireType domain.ActorKind     `json:"partenaire_type"`
	CreeePar       domain.ActorKind     `json:"creee_par"`

	Nom         string `json:"nom"`
	Description string `json:"description"`
	Logo        string `json:"logo"`
	Localite    string `json:"localite"`
	Adresse     string `json:"adresse"`
	Telephone   string `json:"telephone"`
	Email       string `json:"email"`
	Secteur     string `json:"secteur"`

	// Agriculture-specific fields.
	TypeCulture        string     `json:"type_culture,omitempty"`
	SuperficieHectares string     `json:"superficie_hectares,omitempty"`
	DateDebutActivite  *time.Time `json:"date_debut_activite,omitempty"`

	// Enterprise-specific fields.
	NumeroRegistre string `json:"numero_registre,omitempty"`
	SiteWeb        string `json:"site_web,omitempty"`

	ModifiablePar  ModifiablePar  `json:"modifiable_par"`
	VisibleSurPage bool           `json:"visible_sur_page"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// CanBeViewedBy grants either party of the page's abonnement a full view of
// any partner's information. Transparency is symmetric inside a partnership.
func (i *InformationPartenaire) CanBeViewedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	return ab != nil && ab.HasMember(actor)
}

// CanBeModifiedBy applies the declared ModifiablePar policy. The update
// service does NOT use this check; it enforces the stricter
// CanBeModifiedByOwner. The policy predicate is kept because the two rules
// diverge on LES_DEUX records edited by non-creators.
func (i *InformationPartenaire) CanBeModifiedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	if ab == nil || !ab.HasMember(actor) {
		return false
	}
	switch i.ModifiablePar {
	case ModifiableParLesDeux:
		return true
	case ModifiableParUser:
		return actor.IsUser()
	case ModifiableParSociete:
		return actor.IsSociete()
	}
	return false
}

// CanBeModifiedByOwner is the check the update operation actually enforces:
// the actor must be a member and the original creator, matching both the
// stamped kind and the partner id.
func (i *InformationPartenaire) CanBeModifiedByOwner(actor domain.Actor, ab *abmodels.Abonnement) bool {
	if ab == nil || !ab.HasMember(actor) {
		return false
	}
	return i.CreeePar == actor.Kind && i.PartenaireID == actor.ID
}

// CanBeDeletedBy mirrors the ownership rule: only the creator may delete,
// irrespective of ModifiablePar.
func (i *InformationPartenaire) CanBeDeletedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	return i.CanBeModifiedByOwner(actor, ab)
}

// InformationUpdate carries the optional fields an update may touch.
// Nil means "leave untouched". DateDebutActivite arrives as a string and is
// re-parsed by the service.
type InformationUpdate struct {
	Nom                *string `json:"nom,omitempty"`
	Description        *string `json:"description,omitempty"`
	Logo               *string `json:"logo,omitempty"`
	Localite           *string `json:"localite,omitempty"`
	Adresse            *string `json:"adresse,omitempty"`
	Telephone          *string `json:"telephone,omitempty"`
	Email              *string `json:"email,omitempty"`
	Secteur            *string `json:"secteur,omitempty"`
	TypeCulture        *string `json:"type_culture,omitempty"`
	SuperficieHectares *string `json:"superficie_hectares,omitempty"`
	DateDebutActivite  *string `json:"date_debut_activite,omitempty"`
	NumeroRegistre     *string `json:"numero_registre,omitempty"`
	SiteWeb            *string `json:"site_web,omitempty"`
	ModifiablePar      *string `json:"modifiable_par,omitempty"`
	VisibleSurPage     *bool   `json:"visible_sur_page,omitempty"`
}
