package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"meldingen/internal/asset/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// AssetStore persists assets in PostgreSQL. Pure I/O; ownership and
// idempotency rules live in the melding service.
type AssetStore struct {
	db *sql.DB
}

func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

func (s *AssetStore) Save(ctx context.Context, a models.Asset) error {
	query := `
		INSERT INTO assets (id, external_id, asset_type_id, melding_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			external_id = EXCLUDED.external_id,
			asset_type_id = EXCLUDED.asset_type_id,
			melding_id = EXCLUDED.melding_id
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(a.ID), a.ExternalID, uuid.UUID(a.AssetTypeID), uuid.UUID(a.MeldingID),
	)
	if err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func (s *AssetStore) Retrieve(ctx context.Context, id domain.AssetID) (*models.Asset, error) {
	query := `SELECT id, external_id, asset_type_id, melding_id FROM assets WHERE id = $1`
	a, err := scanAsset(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("retrieve asset: %w", err)
	}
	return a, nil
}

func (s *AssetStore) FindByExternalIDAndAssetTypeID(ctx context.Context, externalID string, assetTypeID domain.AssetTypeID) (*models.Asset, error) {
	query := `
		SELECT id, external_id, asset_type_id, melding_id
		FROM assets
		WHERE external_id = $1 AND asset_type_id = $2
	`
	a, err := scanAsset(s.db.QueryRowContext(ctx, query, externalID, uuid.UUID(assetTypeID)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find asset by external id and asset type: %w", err)
	}
	return a, nil
}

func (s *AssetStore) FindByMelding(ctx context.Context, meldingID domain.MeldingID) ([]models.Asset, error) {
	query := `SELECT id, external_id, asset_type_id, melding_id FROM assets WHERE melding_id = $1`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(meldingID))
	if err != nil {
		return nil, fmt.Errorf("find assets by melding: %w", err)
	}
	defer rows.Close()

	var out []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("find assets by melding: %w", err)
		}
		out = append(out, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find assets by melding: %w", err)
	}
	return out, nil
}

func (s *AssetStore) Delete(ctx context.Context, id domain.AssetID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAsset(row rowScanner) (*models.Asset, error) {
	var a models.Asset
	var id, assetTypeID, meldingID uuid.UUID

	if err := row.Scan(&id, &a.ExternalID, &assetTypeID, &meldingID); err != nil {
		return nil, err
	}
	a.ID = domain.AssetID(id)
	a.AssetTypeID = domain.AssetTypeID(assetTypeID)
	a.MeldingID = domain.MeldingID(meldingID)
	return &a, nil
}

// AssetTypeStore persists asset types in PostgreSQL.
type AssetTypeStore struct {
	db *sql.DB
}

func NewAssetTypeStore(db *sql.DB) *AssetTypeStore {
	return &AssetTypeStore{db: db}
}

func (s *AssetTypeStore) Save(ctx context.Context, at models.AssetType) error {
	query := `
		INSERT INTO asset_types (id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, uuid.UUID(at.ID), at.Name, at.CreatedAt, at.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save asset type: %w", err)
	}
	return nil
}

func (s *AssetTypeStore) Retrieve(ctx context.Context, id domain.AssetTypeID) (*models.AssetType, error) {
	query := `SELECT id, name, created_at, updated_at FROM asset_types WHERE id = $1`
	at, err := scanAssetType(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("retrieve asset type: %w", err)
	}
	return at, nil
}

func (s *AssetTypeStore) FindByName(ctx context.Context, name string) (*models.AssetType, error) {
	query := `SELECT id, name, created_at, updated_at FROM asset_types WHERE name = $1`
	at, err := scanAssetType(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find asset type by name: %w", err)
	}
	return at, nil
}

func (s *AssetTypeStore) List(ctx context.Context) ([]models.AssetType, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM asset_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}
	defer rows.Close()

	var out []models.AssetType
	for rows.Next() {
		at, err := scanAssetType(rows)
		if err != nil {
			return nil, fmt.Errorf("list asset types: %w", err)
		}
		out = append(out, *at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list asset types: %w", err)
	}
	return out, nil
}

func (s *AssetTypeStore) Delete(ctx context.Context, id domain.AssetTypeID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM asset_types WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete asset type: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete asset type: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanAssetType(row rowScanner) (*models.AssetType, error) {
	var at models.AssetType
	var id uuid.UUID

	if err := row.Scan(&id, &at.Name, &at.CreatedAt, &at.UpdatedAt); err != nil {
		return nil, err
	}
	at.ID = domain.AssetTypeID(id)
	return &at, nil
}
