package models

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"kolabo/pkg/domain"
)

func societeInformation() *InformationPartenaire {
	return &InformationPartenaire{
		PageID:         3,
		PartenaireID:   12,
		PartenaireType: domain.KindSociete,
		CreeePar:       domain.KindSociete,
		Nom:            "Coopérative Sénou",
		ModifiablePar:  ModifiableParLesDeux,
		VisibleSurPage: true,
	}
}

func TestInformationViewIsSymmetric(t *testing.T) {
	ab := testAbonnement()
	info := societeInformation()

	assert.True(t, info.CanBeViewedBy(domain.UserActor(7), ab))
	assert.True(t, info.CanBeViewedBy(domain.SocieteActor(12), ab))
	assert.False(t, info.CanBeViewedBy(domain.UserActor(99), ab))
	assert.False(t, info.CanBeViewedBy(domain.SocieteActor(99), ab))
}

// The policy check and the ownership check diverge on LES_DEUX records: the
// non-creator passes the policy but never the ownership rule the update path
// enforces.
func TestOwnershipStricterThanPolicy(t *testing.T) {
	ab := testAbonnement()
	info := societeInformation()
	user := domain.UserActor(7)
	societe := domain.SocieteActor(12)

	assert.True(t, info.CanBeModifiedBy(user, ab), "LES_DEUX policy admits the individual")
	assert.False(t, info.CanBeModifiedByOwner(user, ab), "ownership rule does not")

	assert.True(t, info.CanBeModifiedBy(societe, ab))
	assert.True(t, info.CanBeModifiedByOwner(societe, ab))
}

func TestModifiableParPolicy(t *testing.T) {
	ab := testAbonnement()
	user := domain.UserActor(7)
	societe := domain.SocieteActor(12)

	info := societeInformation()

	info.ModifiablePar = ModifiableParUser
	assert.True(t, info.CanBeModifiedBy(user, ab))
	assert.False(t, info.CanBeModifiedBy(societe, ab))

	info.ModifiablePar = ModifiableParSociete
	assert.False(t, info.CanBeModifiedBy(user, ab))
	assert.True(t, info.CanBeModifiedBy(societe, ab))

	// Membership is required regardless of policy.
	info.ModifiablePar = ModifiableParLesDeux
	assert.False(t, info.CanBeModifiedBy(domain.UserActor(99), ab))
}

func TestDeleteIsCreatorOnly(t *testing.T) {
	ab := testAbonnement()
	info := societeInformation()

	assert.True(t, info.CanBeDeletedBy(domain.SocieteActor(12), ab))
	assert.False(t, info.CanBeDeletedBy(domain.UserActor(7), ab))

	// An actor of the right kind but the wrong id is not the creator.
	assert.False(t, info.CanBeDeletedBy(domain.SocieteActor(99), ab))
}

func TestPageAccessGate(t *testing.T) {
	ab := testAbonnement()
	page := &PagePartenariat{ID: 3, AbonnementID: ab.ID}

	assert.True(t, page.CanBeAccessedBy(domain.UserActor(7), ab))
	assert.True(t, page.CanBeAccessedBy(domain.SocieteActor(12), ab))
	assert.False(t, page.CanBeAccessedBy(domain.UserActor(8), ab))
	assert.False(t, page.CanBeAccessedBy(domain.UserActor(7), nil))

	// A resolved abonnement that is not the page's owner never grants access.
	other := testAbonnement()
	other.ID = 42
	assert.False(t, page.CanBeAccessedBy(domain.UserActor(7), other))
}
