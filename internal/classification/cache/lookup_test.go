package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"meldingen/internal/classification/cache"
	"meldingen/internal/classification/models"
	classificationmemory "meldingen/internal/classification/store/memory"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilClientDelegates(t *testing.T) {
	store := classificationmemory.New()
	c := &models.Classification{ID: domain.NewClassificationID(), Name: "lighting"}
	require.NoError(t, store.Save(context.Background(), c))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lookup := cache.New(nil, store, time.Minute, logger)

	got, err := lookup.FindByName(context.Background(), "lighting")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = lookup.FindByName(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, sentinel.ErrClassificationNotFound)

	assert.NoError(t, lookup.Invalidate(context.Background(), "lighting"))
}
