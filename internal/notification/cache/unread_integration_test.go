//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"kolabo/internal/notification/cache"
	platformredis "kolabo/internal/platform/redis"
	"kolabo/pkg/domain"
	"kolabo/pkg/testutil/containers"
)

// =============================================================================
// Unread Count Cache (integration)
// =============================================================================
// Justification for integration tests: the cache contract is
// invalidate-on-write plus TTL expiry, and both only hold against a real
// Redis. The nil-disabled path is covered here too since it has no other
// dedicated test.

type UnreadCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.UnreadCounts
}

func TestUnreadCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnreadCacheSuite))
}

func (s *UnreadCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	client := &platformredis.Client{Client: s.redis.Client}
	s.cache = cache.NewUnreadCounts(client, time.Minute)
}

func (s *UnreadCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *UnreadCacheSuite) TestSetGetInvalidate() {
	ctx := context.Background()
	recipient := domain.UserActor(7)

	_, ok, err := s.cache.Get(ctx, recipient)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Set(ctx, recipient, 4))

	count, ok, err := s.cache.Get(ctx, recipient)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(4, count)

	// Same id, other kind is a different recipient.
	_, ok, err = s.cache.Get(ctx, domain.SocieteActor(7))
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.cache.Invalidate(ctx, recipient))
	_, ok, err = s.cache.Get(ctx, recipient)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *UnreadCacheSuite) TestTTLExpiry() {
	ctx := context.Background()
	recipient := domain.UserActor(7)

	client := &platformredis.Client{Client: s.redis.Client}
	short := cache.NewUnreadCounts(client, 100*time.Millisecond)
	s.Require().NoError(short.Set(ctx, recipient, 2))

	s.Eventually(func() bool {
		_, ok, err := short.Get(ctx, recipient)
		return err == nil && !ok
	}, 2*time.Second, 50*time.Millisecond)
}

func (s *UnreadCacheSuite) TestNilCacheIsDisabled() {
	ctx := context.Background()
	var disabled *cache.UnreadCounts

	s.NoError(disabled.Set(ctx, domain.UserActor(7), 1))
	_, ok, err := disabled.Get(ctx, domain.UserActor(7))
	s.NoError(err)
	s.False(ok)
	s.NoError(disabled.Invalidate(ctx, domain.UserActor(7)))
}
