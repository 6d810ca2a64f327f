package postgres

import (
	"context"
	"database/sql"
	"fmt"

	assetmodels "meldingen/internal/asset/models"
	"meldingen/internal/classification/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"

	"github.com/google/uuid"
)

// Store persists classifications in PostgreSQL. Pure I/O; name resolution
// rules live in the classifier.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectColumns = `
	c.id, c.name, c.created_at, c.updated_at,
	at.id, at.name, at.created_at, at.updated_at
`

const fromClause = `
	FROM classifications c
	LEFT JOIN asset_types at ON at.id = c.asset_type_id
`

func (s *Store) Save(ctx context.Context, c *models.Classification) error {
	var assetTypeID any
	if c.AssetType != nil {
		assetTypeID = uuid.UUID(c.AssetType.ID)
	}
	query := `
		INSERT INTO classifications (id, name, asset_type_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			asset_type_id = EXCLUDED.asset_type_id,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(c.ID), c.Name, assetTypeID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save classification: %w", err)
	}
	return nil
}

func (s *Store) Retrieve(ctx context.Context, id domain.ClassificationID) (*models.Classification, error) {
	query := `SELECT ` + selectColumns + fromClause + ` WHERE c.id = $1`
	c, err := scanClassification(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("retrieve classification: %w", err)
	}
	return c, nil
}

func (s *Store) FindByName(ctx context.Context, name string) (*models.Classification, error) {
	query := `SELECT ` + selectColumns + fromClause + ` WHERE c.name = $1`
	c, err := scanClassification(s.db.QueryRowContext(ctx, query, name))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrClassificationNotFound
		}
		return nil, fmt.Errorf("find classification by name: %w", err)
	}
	return c, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Classification, error) {
	query := `SELECT ` + selectColumns + fromClause + ` ORDER BY c.name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	defer rows.Close()

	var out []*models.Classification
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, fmt.Errorf("list classifications: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list classifications: %w", err)
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id domain.ClassificationID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM classifications WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete classification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete classification: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClassification(row rowScanner) (*models.Classification, error) {
	var c models.Classification
	var cID uuid.UUID
	var atID uuid.NullUUID
	var atName sql.NullString
	var atCreated, atUpdated sql.NullTime

	err := row.Scan(
		&cID, &c.Name, &c.CreatedAt, &c.UpdatedAt,
		&atID, &atName, &atCreated, &atUpdated,
	)
	if err != nil {
		return nil, err
	}
	c.ID = domain.ClassificationID(cID)

	if atID.Valid {
		c.AssetType = &assetmodels.AssetType{
			ID:        domain.AssetTypeID(atID.UUID),
			Name:      atName.String,
			CreatedAt: atCreated.Time,
			UpdatedAt: atUpdated.Time,
		}
	}
	return &c, nil
}
