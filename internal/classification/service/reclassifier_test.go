package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	assetmodels "meldingen/internal/asset/models"
	"meldingen/internal/classification/models"
	"meldingen/internal/classification/service"
	meldingmodels "meldingen/internal/melding/models"
	"meldingen/pkg/domain"
)

type fakeAssetDeleter struct {
	deleted []domain.AssetID
	err     error
}

func (d *fakeAssetDeleter) Delete(_ context.Context, id domain.AssetID) error {
	if d.err != nil {
		return d.err
	}
	d.deleted = append(d.deleted, id)
	return nil
}

type fakeMeldingSaver struct {
	saved int
}

func (s *fakeMeldingSaver) Save(_ context.Context, _ *meldingmodels.Melding) error {
	s.saved++
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func float64Ptr(f float64) *float64 { return &f }

func TestReclassifier_Reclassify(t *testing.T) {
	ctx := context.Background()

	lampType := domain.NewAssetTypeID()
	treeType := domain.NewAssetTypeID()

	newMelding := func() *meldingmodels.Melding {
		return &meldingmodels.Melding{
			ID:  domain.NewMeldingID(),
			Lat: float64Ptr(52.37),
			Lon: float64Ptr(4.89),
			Assets: []assetmodels.Asset{
				{ID: domain.NewAssetID(), ExternalID: "lamp-1", AssetTypeID: lampType},
				{ID: domain.NewAssetID(), ExternalID: "lamp-2", AssetTypeID: lampType},
			},
		}
	}

	t.Run("matching asset type keeps assets and location", func(t *testing.T) {
		deleter := &fakeAssetDeleter{}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := newMelding()

		newClass := &models.Classification{
			ID:        domain.NewClassificationID(),
			Name:      "lighting",
			AssetType: &assetmodels.AssetType{ID: lampType, Name: "lamppost"},
		}

		require.NoError(t, r.Reclassify(ctx, m, newClass))
		assert.Len(t, m.Assets, 2)
		assert.True(t, m.HasLocation())
		assert.Empty(t, deleter.deleted)
		assert.Zero(t, saver.saved, "nothing changed, nothing to persist")
	})

	t.Run("different asset type detaches all mismatched assets and clears location", func(t *testing.T) {
		deleter := &fakeAssetDeleter{}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := newMelding()

		newClass := &models.Classification{
			ID:        domain.NewClassificationID(),
			Name:      "trees",
			AssetType: &assetmodels.AssetType{ID: treeType, Name: "tree"},
		}

		require.NoError(t, r.Reclassify(ctx, m, newClass))
		assert.Empty(t, m.Assets)
		assert.False(t, m.HasLocation())
		assert.Len(t, deleter.deleted, 2)
		assert.Equal(t, 1, saver.saved)
	})

	t.Run("nil classification detaches everything", func(t *testing.T) {
		deleter := &fakeAssetDeleter{}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := newMelding()

		require.NoError(t, r.Reclassify(ctx, m, nil))
		assert.Empty(t, m.Assets)
		assert.False(t, m.HasLocation())
		assert.Equal(t, 1, saver.saved)
	})

	t.Run("classification without asset type detaches everything", func(t *testing.T) {
		deleter := &fakeAssetDeleter{}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := newMelding()

		newClass := &models.Classification{ID: domain.NewClassificationID(), Name: "noise"}

		require.NoError(t, r.Reclassify(ctx, m, newClass))
		assert.Empty(t, m.Assets)
		assert.False(t, m.HasLocation())
	})

	t.Run("delete failure aborts before melding is persisted", func(t *testing.T) {
		boom := errors.New("store down")
		deleter := &fakeAssetDeleter{err: boom}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := newMelding()

		err := r.Reclassify(ctx, m, nil)
		require.ErrorIs(t, err, boom)
		assert.Zero(t, saver.saved)
	})

	t.Run("melding without assets is a no-op", func(t *testing.T) {
		deleter := &fakeAssetDeleter{}
		saver := &fakeMeldingSaver{}
		r := service.NewReclassifier(deleter, saver, discardLogger())
		m := &meldingmodels.Melding{ID: domain.NewMeldingID(), Lat: float64Ptr(1), Lon: float64Ptr(2)}

		require.NoError(t, r.Reclassify(ctx, m, nil))
		assert.True(t, m.HasLocation(), "location untouched when no assets were detached")
		assert.Zero(t, saver.saved)
	})
}
