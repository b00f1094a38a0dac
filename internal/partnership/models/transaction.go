package models

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
)

// TransactionStatus is the transaction workflow state.
// PENDING_VALIDATION is initial; VALIDATED and REJECTED are terminal.
type TransactionStatus string

const (
	StatusPendingValidation TransactionStatus = "PENDING_VALIDATION"
	StatusValidated         TransactionStatus = "VALIDATED"
	StatusRejected          TransactionStatus = "REJECTED"
)

// Defaults applied at creation when the caller leaves them blank.
const (
	DefaultUnite  = "Kg"
	DefaultDevise = "CFA"
)

// TransactionPartenariat is a billable line item within a partnership.
// The workflow is asymmetric: the organization authors, the individual
// validates.
//
// Invariants:
//   - PrixTotal == Quantite * PrixUnitaire, recomputed on every create and
//     on any update touching either factor; never set independently.
//   - Only organizations create transactions (CreeeParSociete always true).
//   - Once ValideeParUser is true the record is immutable to the
//     organization: no further edits, no deletion.
type TransactionPartenariat struct {
	ID        domain.TransactionID `json:"id"`
	PageID    domain.PageID        `json:"page_partenariat_id"`
	DateDebut time.Time            `json:"date_debut"`
	DateFin   time.Time            `json:"date_fin"`
	Periode   string               `json:"periode"`
	Produit   string               `json:"produit"`
	Categorie string               `json:"categorie"`

	Quantite     decimal.Decimal `json:"quantite"`
	Unite        string          `json:"unite"`
	PrixUnitaire decimal.Decimal `json:"prix_unitaire"`
	Devise       string          `json:"devise"`
	PrixTotal    decimal.Decimal `json:"prix_total"`

	Status          TransactionStatus `json:"status"`
	CreeeParSociete bool              `json:"creee_par_societe"`
	ValideeParUser  bool              `json:"validee_par_user"`
	ValideeAt       *time.Time        `json:"validee_at,omitempty"`
	ModifieeAt      *time.Time        `json:"modifiee_at,omitempty"`

	Documents             []string       `json:"documents,omitempty"`
	Notes                 string         `json:"notes,omitempty"`
	CommentaireValidation string         `json:"commentaire_validation,omitempty"`
	Metadata              map[string]any `json:"metadata,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// ComputeTotal re-derives PrixTotal from its factors.
func (t *TransactionPartenariat) ComputeTotal() {
	t.PrixTotal = t.Quantite.Mul(t.PrixUnitaire)
}

// TransactionCanBeCreatedBy is the static creation check: only
// organization-kind actors author transactions.
func TransactionCanBeCreatedBy(actor domain.Actor) bool {
	return actor.IsSociete()
}

// CanBeViewedBy implements the visibility asymmetry: the organization side
// sees every transaction on its page unconditionally; the individual side
// sees only those still pending validation. Resolved transactions leaving
// the individual's view is deliberate, not a bug.
func (t *TransactionPartenariat) CanBeViewedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	if ab == nil || !ab.HasMember(actor) {
		return false
	}
	if actor.IsSociete() {
		return true
	}
	return t.Status == StatusPendingValidation
}

// CanBeModifiedBy allows edits by the organization side only, and only while
// the individual has not validated.
func (t *TransactionPartenariat) CanBeModifiedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	if ab == nil || !ab.HasMember(actor) || !actor.IsSociete() {
		return false
	}
	return !t.ValideeParUser
}

// CanBeValidatedBy allows validation by the individual side of the page's
// abonnement, once, while the transaction is still pending.
func (t *TransactionPartenariat) CanBeValidatedBy(userID domain.UserID, ab *abmodels.Abonnement) bool {
	if ab == nil || ab.UserID != userID {
		return false
	}
	return t.Status == StatusPendingValidation && !t.ValideeParUser
}

// CanBeDeletedBy allows deletion by the organization side only, pre-validation.
func (t *TransactionPartenariat) CanBeDeletedBy(actor domain.Actor, ab *abmodels.Abonnement) bool {
	return t.CanBeModifiedBy(actor, ab)
}

// ApplyValidation marks the transaction validated. Guard with
// CanBeValidatedBy; this mutation does not re-check.
func (t *TransactionPartenariat) ApplyValidation(comment string, now time.Time) {
	t.ValideeParUser = true
	t.Status = StatusValidated
	t.ValideeAt = &now
	t.CommentaireValidation = comment
	t.UpdatedAt = now
}

// ApplyRejection marks the transaction rejected. Guard with
// CanBeValidatedBy: rejection is the validator's other exit from pending.
func (t *TransactionPartenariat) ApplyRejection(comment string, now time.Time) {
	t.Status = StatusRejected
	t.CommentaireValidation = comment
	t.UpdatedAt = now
}

// Duree returns the billing period length as a whole number of days,
// rounded up.
func (t *TransactionPartenariat) Duree() int {
	if !t.DateFin.After(t.DateDebut) {
		return 0
	}
	hours := t.DateFin.Sub(t.DateDebut).Hours()
	return int(math.Ceil(hours / 24))
}

// TransactionUpdate carries the optional fields the organization may edit
// pre-validation. Nil means "leave untouched".
type TransactionUpdate struct {
	DateDebut    *time.Time       `json:"date_debut,omitempty"`
	DateFin      *time.Time       `json:"date_fin,omitempty"`
	Periode      *string          `json:"periode,omitempty"`
	Produit      *string          `json:"produit,omitempty"`
	Categorie    *string          `json:"categorie,omitempty"`
	Quantite     *decimal.Decimal `json:"quantite,omitempty"`
	Unite        *string          `json:"unite,omitempty"`
	PrixUnitaire *decimal.Decimal `json:"prix_unitaire,omitempty"`
	Devise       *string          `json:"devise,omitempty"`
	Documents    []string         `json:"documents,omitempty"`
	Notes        *string          `json:"notes,omitempty"`
}

// Apply merges only the supplied fields and recomputes the total whenever a
// factor changed.
func (t *TransactionPartenariat) Apply(u TransactionUpdate, now time.Time) {
	if u.DateDebut != nil {
		t.DateDebut = *u.DateDebut
	}
	if u.DateFin != nil {
		t.DateFin = *u.DateFin
	}
	if u.Periode != nil {
		t.Periode = *u.Periode
	}
	if u.Produit != nil {
		t.Produit = *u.Produit
	}
	if u.Categorie != nil {
		t.Categorie = *u.Categorie
	}
	if u.Unite != nil {
		t.Unite = *u.Unite
	}
	if u.Devise != nil {
		t.Devise = *u.Devise
	}
	if u.Documents != nil {
		t.Documents = u.Documents
	}
	if u.Notes != nil {
		t.Notes = *u.Notes
	}
	if u.Quantite != nil || u.PrixUnitaire != nil {
		if u.Quantite != nil {
			t.Quantite = *u.Quantite
		}
		if u.PrixUnitaire != nil {
			t.PrixUnitaire = *u.PrixUnitaire
		}
		t.ComputeTotal()
	}
	t.ModifieeAt = &now
	t.UpdatedAt = now
}
