package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kolabo/pkg/domain"
)

func TestMarkReadIsIdempotent(t *testing.T) {
	n := &Notification{RecipientID: 7, RecipientType: domain.KindUser, Type: TypePostLiked}
	first := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	assert.True(t, n.MarkRead(first))
	require.NotNil(t, n.ReadAt)
	assert.Equal(t, first, *n.ReadAt)

	assert.False(t, n.MarkRead(second))
	assert.True(t, n.IsRead)
	assert.Equal(t, first, *n.ReadAt, "read_at must not drift on repeat calls")
}

func TestBelongsToMatchesBothHalves(t *testing.T) {
	n := &Notification{RecipientID: 7, RecipientType: domain.KindUser}

	assert.True(t, n.BelongsTo(domain.UserActor(7)))
	assert.False(t, n.BelongsTo(domain.UserActor(8)))
	// Same id, wrong kind.
	assert.False(t, n.BelongsTo(domain.SocieteActor(7)))
}

func TestActorIsOptional(t *testing.T) {
	n := &Notification{RecipientID: 7, RecipientType: domain.KindUser, Type: TypeSystem}
	_, ok := n.Actor()
	assert.False(t, ok)

	n.SetActor(domain.SocieteActor(12))
	actor, ok := n.Actor()
	require.True(t, ok)
	assert.Equal(t, domain.SocieteActor(12), actor)
}

func TestCatalogIsClosed(t *testing.T) {
	types := AllTypes()
	assert.Len(t, types, 40)

	seen := make(map[Type]struct{}, len(types))
	for _, tp := range types {
		_, dup := seen[tp]
		assert.False(t, dup, "duplicate type %s", tp)
		seen[tp] = struct{}{}
		assert.True(t, tp.Valid())
	}
	assert.False(t, Type("UNKNOWN").Valid())
}
