//go:build integration

package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"meldingen/internal/classification/cache"
	"meldingen/internal/classification/models"
	classificationmemory "meldingen/internal/classification/store/memory"
	"meldingen/pkg/domain"
	"meldingen/pkg/testutil/containers"
)

// countingLookup counts hits on the wrapped lookup so tests can tell cache
// hits from misses.
type countingLookup struct {
	next  *classificationmemory.Store
	calls int
}

func (c *countingLookup) FindByName(ctx context.Context, name string) (*models.Classification, error) {
	c.calls++
	return c.next.FindByName(ctx, name)
}

type RedisCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	store   *classificationmemory.Store
	counter *countingLookup
	lookup  *cache.NameLookup
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))

	s.store = classificationmemory.New()
	s.counter = &countingLookup{next: s.store}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.lookup = cache.New(s.redis.Client, s.counter, time.Minute, logger)
}

func (s *RedisCacheSuite) TestReadThrough() {
	ctx := context.Background()

	c := &models.Classification{ID: domain.NewClassificationID(), Name: "lighting"}
	s.Require().NoError(s.store.Save(ctx, c))

	first, err := s.lookup.FindByName(ctx, "lighting")
	s.Require().NoError(err)
	s.Equal(c.ID, first.ID)
	s.Equal(1, s.counter.calls)

	second, err := s.lookup.FindByName(ctx, "lighting")
	s.Require().NoError(err)
	s.Equal(c.ID, second.ID)
	s.Equal(1, s.counter.calls, "second read should come from the cache")
}

func (s *RedisCacheSuite) TestMissIsNotCached() {
	ctx := context.Background()

	_, err := s.lookup.FindByName(ctx, "nonexistent")
	s.Error(err)
	_, err = s.lookup.FindByName(ctx, "nonexistent")
	s.Error(err)
	s.Equal(2, s.counter.calls)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()

	c := &models.Classification{ID: domain.NewClassificationID(), Name: "lighting"}
	s.Require().NoError(s.store.Save(ctx, c))

	_, err := s.lookup.FindByName(ctx, "lighting")
	s.Require().NoError(err)
	s.Require().NoError(s.lookup.Invalidate(ctx, "lighting"))

	_, err = s.lookup.FindByName(ctx, "lighting")
	s.Require().NoError(err)
	s.Equal(2, s.counter.calls, "invalidation forces a fresh read")
}
