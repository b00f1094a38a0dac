package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	abmodels "kolabo/internal/abonnement/models"
	"kolabo/pkg/domain"
)

func testAbonnement() *abmodels.Abonnement {
	return &abmodels.Abonnement{
		ID:        41,
		UserID:    7,
		SocieteID: 12,
		Status:    abmodels.StatusActif,
	}
}

func pendingTransaction() *TransactionPartenariat {
	t := &TransactionPartenariat{
		PageID:          3,
		Quantite:        decimal.NewFromInt(10),
		PrixUnitaire:    decimal.NewFromInt(500),
		Unite:           DefaultUnite,
		Devise:          DefaultDevise,
		Status:          StatusPendingValidation,
		CreeeParSociete: true,
	}
	t.ComputeTotal()
	return t
}

func TestComputeTotal(t *testing.T) {
	tr := pendingTransaction()
	assert.True(t, decimal.NewFromInt(5000).Equal(tr.PrixTotal))

	// Total follows factor updates, never drifts.
	now := time.Now()
	q := decimal.NewFromInt(3)
	tr.Apply(TransactionUpdate{Quantite: &q}, now)
	assert.True(t, decimal.NewFromInt(1500).Equal(tr.PrixTotal))

	p := decimal.RequireFromString("2.5")
	tr.Apply(TransactionUpdate{PrixUnitaire: &p}, now)
	assert.True(t, decimal.RequireFromString("7.5").Equal(tr.PrixTotal))
}

func TestApplyLeavesTotalWhenFactorsUntouched(t *testing.T) {
	tr := pendingTransaction()
	notes := "livraison partielle"
	tr.Apply(TransactionUpdate{Notes: &notes}, time.Now())
	assert.True(t, decimal.NewFromInt(5000).Equal(tr.PrixTotal))
	assert.Equal(t, notes, tr.Notes)
	assert.NotNil(t, tr.ModifieeAt)
}

func TestTransactionCanBeCreatedBy(t *testing.T) {
	assert.True(t, TransactionCanBeCreatedBy(domain.SocieteActor(12)))
	assert.False(t, TransactionCanBeCreatedBy(domain.UserActor(7)))
	assert.False(t, TransactionCanBeCreatedBy(domain.SystemActor))
}

func TestVisibilityAsymmetry(t *testing.T) {
	ab := testAbonnement()
	tr := pendingTransaction()

	// Pending: both sides see it.
	assert.True(t, tr.CanBeViewedBy(domain.SocieteActor(12), ab))
	assert.True(t, tr.CanBeViewedBy(domain.UserActor(7), ab))

	tr.ApplyValidation("ok", time.Now())

	// Validated: the organization still sees it, the individual no longer does.
	assert.True(t, tr.CanBeViewedBy(domain.SocieteActor(12), ab))
	assert.False(t, tr.CanBeViewedBy(domain.UserActor(7), ab))

	// Non-members never see anything.
	assert.False(t, tr.CanBeViewedBy(domain.SocieteActor(99), ab))
	assert.False(t, tr.CanBeViewedBy(domain.UserActor(99), ab))
}

func TestValidationIsTerminalForEdits(t *testing.T) {
	ab := testAbonnement()
	tr := pendingTransaction()
	societe := domain.SocieteActor(12)

	assert.True(t, tr.CanBeModifiedBy(societe, ab))
	assert.True(t, tr.CanBeDeletedBy(societe, ab))

	tr.ApplyValidation("ok", time.Now())

	assert.False(t, tr.CanBeModifiedBy(societe, ab))
	assert.False(t, tr.CanBeDeletedBy(societe, ab))
}

func TestUserNeverModifies(t *testing.T) {
	ab := testAbonnement()
	tr := pendingTransaction()
	assert.False(t, tr.CanBeModifiedBy(domain.UserActor(7), ab))
}

func TestCanBeValidatedBy(t *testing.T) {
	ab := testAbonnement()
	tr := pendingTransaction()

	assert.True(t, tr.CanBeValidatedBy(7, ab))
	assert.False(t, tr.CanBeValidatedBy(99, ab), "wrong user side")

	tr.ApplyValidation("ok", time.Now())
	assert.False(t, tr.CanBeValidatedBy(7, ab), "already validated")

	rejected := pendingTransaction()
	rejected.ApplyRejection("hors contrat", time.Now())
	assert.False(t, rejected.CanBeValidatedBy(7, ab), "rejected is terminal")
}

func TestApplyValidation(t *testing.T) {
	tr := pendingTransaction()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	tr.ApplyValidation("conforme", now)

	assert.Equal(t, StatusValidated, tr.Status)
	assert.True(t, tr.ValideeParUser)
	assert.Equal(t, now, *tr.ValideeAt)
	assert.Equal(t, "conforme", tr.CommentaireValidation)
}

func TestDuree(t *testing.T) {
	tr := pendingTransaction()
	tr.DateDebut = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tr.DateFin = tr.DateDebut.AddDate(0, 0, 7)
	assert.Equal(t, 7, tr.Duree())

	// Partial days round up.
	tr.DateFin = tr.DateDebut.Add(36 * time.Hour)
	assert.Equal(t, 2, tr.Duree())

	tr.DateFin = tr.DateDebut
	assert.Equal(t, 0, tr.Duree())
}
