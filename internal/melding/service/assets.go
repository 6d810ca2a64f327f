package service

import (
	"context"
	"errors"
	"fmt"

	assetmodels "meldingen/internal/asset/models"
	"meldingen/internal/melding/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/audit"
	"meldingen/pkg/platform/sentinel"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// assetAccessor points the relationship manager at a melding's asset set.
type assetAccessor struct{}

func (assetAccessor) Related(_ context.Context, m *models.Melding) ([]assetmodels.Asset, error) {
	return m.Assets, nil
}

func (assetAccessor) Attach(m *models.Melding, a assetmodels.Asset) {
	m.Assets = append(m.Assets, a)
}

// AddAsset associates an external feature with the melding. The call is
// idempotent by (externalID, assetTypeID): when that pair is already attached
// to this melding the melding is returned unchanged. The asset type must be
// the one the melding's classification references.
func (s *Service) AddAsset(ctx context.Context, id domain.MeldingID, tok, externalID string, assetTypeID domain.AssetTypeID) (*models.Melding, error) {
	ctx, span := s.tracer.Start(ctx, "melding.add_asset",
		trace.WithAttributes(
			attribute.String("melding.id", id.String()),
			attribute.String("asset.external_id", externalID),
		))
	defer span.End()

	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}

	existing, err := s.assets.FindByExternalIDAndAssetTypeID(ctx, externalID, assetTypeID)
	switch {
	case err == nil:
		if existing.MeldingID == melding.ID {
			return melding, nil
		}
		return nil, fmt.Errorf("asset %q already attached to another melding: %w", externalID, sentinel.ErrRelationshipExists)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, err
	}

	if _, err := s.assetTypes.Retrieve(ctx, assetTypeID); err != nil {
		return nil, err
	}
	if melding.Classification == nil || melding.Classification.AssetTypeID() != assetTypeID {
		return nil, fmt.Errorf("asset type %s not referenced by melding's classification: %w", assetTypeID, sentinel.ErrInvalidState)
	}

	asset := assetmodels.Asset{
		ID:          domain.NewAssetID(),
		ExternalID:  externalID,
		AssetTypeID: assetTypeID,
		MeldingID:   melding.ID,
	}
	if err := s.assets.Save(ctx, asset); err != nil {
		return nil, fmt.Errorf("save asset: %w", err)
	}

	melding.UpdatedAt = s.now()
	if _, err := s.relationships.AddRelationship(ctx, melding, asset); err != nil {
		// The asset row must not outlive a failed melding save: a later
		// retry would hit the idempotency branch and the melding would
		// never own the asset.
		if delErr := s.assets.Delete(ctx, asset.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "remove asset after failed melding save",
				"melding_id", melding.ID.String(),
				"asset_id", asset.ID.String(),
				"error", delErr,
			)
		}
		return nil, err
	}

	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventAssetAdded),
		Detail:    externalID,
	})
	return melding, nil
}

// RemoveAsset detaches and deletes an asset. An asset that exists but hangs
// off another melding is reported as not found, so a melder cannot probe
// other meldingen's assets.
func (s *Service) RemoveAsset(ctx context.Context, id domain.MeldingID, tok string, assetID domain.AssetID) (*models.Melding, error) {
	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}

	asset, err := s.assets.Retrieve(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset.MeldingID != melding.ID {
		return nil, fmt.Errorf("asset %s: %w", assetID, sentinel.ErrNotFound)
	}

	if err := s.assets.Delete(ctx, assetID); err != nil {
		return nil, err
	}

	kept := melding.Assets[:0:0]
	for _, a := range melding.Assets {
		if a.ID != assetID {
			kept = append(kept, a)
		}
	}
	melding.Assets = kept

	melding.UpdatedAt = s.now()
	if err := s.store.Save(ctx, melding); err != nil {
		return nil, fmt.Errorf("save melding: %w", err)
	}

	s.emit(ctx, audit.Event{
		MeldingID: melding.ID,
		Action:    string(audit.EventAssetRemoved),
		Detail:    asset.ExternalID,
	})
	return melding, nil
}

// ListAssets returns a melding's assets for operator use.
func (s *Service) ListAssets(ctx context.Context, id domain.MeldingID) ([]assetmodels.Asset, error) {
	melding, err := s.store.Retrieve(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.relationships.GetRelated(ctx, melding)
}

// MelderListAssets returns a melding's assets under token guard.
func (s *Service) MelderListAssets(ctx context.Context, id domain.MeldingID, tok string) ([]assetmodels.Asset, error) {
	melding, err := s.verifier.Verify(ctx, id, tok)
	if err != nil {
		return nil, err
	}
	return s.relationships.GetRelated(ctx, melding)
}
