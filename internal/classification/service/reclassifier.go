package service

import (
	"context"
	"fmt"
	"log/slog"

	assetmodels "meldingen/internal/asset/models"
	"meldingen/internal/classification/models"
	meldingmodels "meldingen/internal/melding/models"
	"meldingen/pkg/domain"
)

// AssetDeleter is the slice of the asset store the reclassifier needs.
type AssetDeleter interface {
	Delete(ctx context.Context, id domain.AssetID) error
}

// MeldingSaver persists a melding after reclassification side effects.
type MeldingSaver interface {
	Save(ctx context.Context, m *meldingmodels.Melding) error
}

// Reclassifier reacts to a category change on an already classified melding.
// It must run, and complete, before the classification field is overwritten:
// its side effects are defined relative to the old category. newClassification
// is nil when reclassification failed to resolve a category.
type Reclassifier struct {
	assets   AssetDeleter
	meldings MeldingSaver
	logger   *slog.Logger
}

func NewReclassifier(assets AssetDeleter, meldings MeldingSaver, logger *slog.Logger) *Reclassifier {
	return &Reclassifier{assets: assets, meldings: meldings, logger: logger}
}

// Reclassify detaches every asset whose type the new classification cannot
// reference, and clears the location when assets were detached (the location
// pointed at an asset of the old category). The melding is persisted only
// when something changed.
func (r *Reclassifier) Reclassify(ctx context.Context, melding *meldingmodels.Melding, newClassification *models.Classification) error {
	newTypeID := newClassification.AssetTypeID()

	var kept []assetmodels.Asset
	var detached int
	for _, a := range melding.Assets {
		if !newTypeID.IsNil() && a.AssetTypeID == newTypeID {
			kept = append(kept, a)
			continue
		}
		if err := r.assets.Delete(ctx, a.ID); err != nil {
			return fmt.Errorf("detach asset %s: %w", a.ID, err)
		}
		detached++
	}

	if detached == 0 {
		return nil
	}

	melding.Assets = kept
	melding.ClearLocation()

	r.logger.InfoContext(ctx, "reclassification detached assets",
		"melding_id", melding.ID.String(),
		"detached", detached,
	)

	return r.meldings.Save(ctx, melding)
}
