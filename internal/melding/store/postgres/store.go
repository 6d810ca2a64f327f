package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	assetmodels "meldingen/internal/asset/models"
	attachmentmodels "meldingen/internal/attachment/models"
	classificationmodels "meldingen/internal/classification/models"
	"meldingen/internal/melding/models"
	meldingstore "meldingen/internal/melding/store"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Store persists meldingen in PostgreSQL. Save carries the optimistic
// version check that makes the retrieve→transition→save cycle safe under
// concurrent access; everything else is pure I/O.
type Store struct {
	db *sql.DB
}

var _ meldingstore.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

func (s *Store) Save(ctx context.Context, m *models.Melding) error {
	var classificationID any
	if m.Classification != nil {
		classificationID = uuid.UUID(m.Classification.ID)
	}

	query := `
		INSERT INTO meldingen (
			id, text, classification_id, token, token_expires,
			phone, email, lat, lon,
			street, house_number, house_number_addition, postal_code, city,
			state, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18 + 1)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			classification_id = EXCLUDED.classification_id,
			token = EXCLUDED.token,
			token_expires = EXCLUDED.token_expires,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			street = EXCLUDED.street,
			house_number = EXCLUDED.house_number,
			house_number_addition = EXCLUDED.house_number_addition,
			postal_code = EXCLUDED.postal_code,
			city = EXCLUDED.city,
			state = EXCLUDED.state,
			updated_at = EXCLUDED.updated_at,
			version = EXCLUDED.version
		WHERE meldingen.version = $18
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(m.ID), m.Text, classificationID, m.Token, m.TokenExpires,
		m.Phone, m.Email, m.Lat, m.Lon,
		m.Street, m.HouseNumber, m.HouseNumberAddition, m.PostalCode, m.City,
		string(m.State), m.CreatedAt, m.UpdatedAt, m.Version,
	)
	if err != nil {
		return fmt.Errorf("save melding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save melding: %w", err)
	}
	if affected == 0 {
		// The row exists with a version this save did not start from.
		return sentinel.ErrConflict
	}

	m.Version++
	return nil
}

const meldingColumns = `
	m.id, m.text, m.token, m.token_expires,
	m.phone, m.email, m.lat, m.lon,
	m.street, m.house_number, m.house_number_addition, m.postal_code, m.city,
	m.state, m.created_at, m.updated_at, m.version,
	c.id, c.name, c.created_at, c.updated_at,
	at.id, at.name, at.created_at, at.updated_at
`

const meldingFrom = `
	FROM meldingen m
	LEFT JOIN classifications c ON c.id = m.classification_id
	LEFT JOIN asset_types at ON at.id = c.asset_type_id
`

func (s *Store) Retrieve(ctx context.Context, id domain.MeldingID) (*models.Melding, error) {
	query := `SELECT ` + meldingColumns + meldingFrom + ` WHERE m.id = $1`
	m, err := scanMelding(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("retrieve melding: %w", err)
	}

	if err := s.loadAssets(ctx, m); err != nil {
		return nil, err
	}
	if err := s.loadAttachments(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) List(ctx context.Context, opts meldingstore.ListOptions) ([]*models.Melding, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + meldingColumns + meldingFrom)

	var args []any
	if len(opts.States) > 0 {
		states := make([]string, len(opts.States))
		for i, st := range opts.States {
			states[i] = string(st)
		}
		args = append(args, strings.Join(states, ","))
		sb.WriteString(` WHERE m.state = ANY(string_to_array($1, ','))`)
	}

	if opts.Sort == meldingstore.SortDesc {
		sb.WriteString(` ORDER BY m.created_at DESC, m.id DESC`)
	} else {
		sb.WriteString(` ORDER BY m.created_at ASC, m.id ASC`)
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		fmt.Fprintf(&sb, ` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		fmt.Fprintf(&sb, ` OFFSET $%d`, len(args))
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list meldingen: %w", err)
	}
	defer rows.Close()

	var out []*models.Melding
	for rows.Next() {
		m, err := scanMelding(rows)
		if err != nil {
			return nil, fmt.Errorf("list meldingen: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list meldingen: %w", err)
	}

	for _, m := range out {
		if err := s.loadAssets(ctx, m); err != nil {
			return nil, err
		}
		if err := s.loadAttachments(ctx, m); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id domain.MeldingID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM meldingen WHERE id = $1`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete melding: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete melding: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) loadAssets(ctx context.Context, m *models.Melding) error {
	query := `
		SELECT id, external_id, asset_type_id, melding_id
		FROM assets
		WHERE melding_id = $1
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(m.ID))
	if err != nil {
		return fmt.Errorf("load melding assets: %w", err)
	}
	defer rows.Close()

	m.Assets = nil
	for rows.Next() {
		var a assetmodels.Asset
		var id, assetTypeID, meldingID uuid.UUID
		if err := rows.Scan(&id, &a.ExternalID, &assetTypeID, &meldingID); err != nil {
			return fmt.Errorf("load melding assets: %w", err)
		}
		a.ID = domain.AssetID(id)
		a.AssetTypeID = domain.AssetTypeID(assetTypeID)
		a.MeldingID = domain.MeldingID(meldingID)
		m.Assets = append(m.Assets, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load melding assets: %w", err)
	}
	return nil
}

func (s *Store) loadAttachments(ctx context.Context, m *models.Melding) error {
	query := `
		SELECT id, melding_id, original_filename, original_media_type, file_path,
		       optimized_path, optimized_media_type, thumbnail_path, thumbnail_media_type,
		       created_at
		FROM attachments
		WHERE melding_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(m.ID))
	if err != nil {
		return fmt.Errorf("load melding attachments: %w", err)
	}
	defer rows.Close()

	m.Attachments = nil
	for rows.Next() {
		var a attachmentmodels.Attachment
		var id, meldingID uuid.UUID
		err := rows.Scan(
			&id, &meldingID, &a.OriginalFilename, &a.OriginalMediaType, &a.FilePath,
			&a.OptimizedPath, &a.OptimizedMediaType, &a.ThumbnailPath, &a.ThumbnailMediaType,
			&a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("load melding attachments: %w", err)
		}
		a.ID = domain.AttachmentID(id)
		a.MeldingID = domain.MeldingID(meldingID)
		m.Attachments = append(m.Attachments, a)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load melding attachments: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMelding(row rowScanner) (*models.Melding, error) {
	var m models.Melding
	var id uuid.UUID
	var state string
	var cID uuid.NullUUID
	var cName sql.NullString
	var cCreated, cUpdated sql.NullTime
	var atID uuid.NullUUID
	var atName sql.NullString
	var atCreated, atUpdated sql.NullTime

	err := row.Scan(
		&id, &m.Text, &m.Token, &m.TokenExpires,
		&m.Phone, &m.Email, &m.Lat, &m.Lon,
		&m.Street, &m.HouseNumber, &m.HouseNumberAddition, &m.PostalCode, &m.City,
		&state, &m.CreatedAt, &m.UpdatedAt, &m.Version,
		&cID, &cName, &cCreated, &cUpdated,
		&atID, &atName, &atCreated, &atUpdated,
	)
	if err != nil {
		return nil, err
	}
	m.ID = domain.MeldingID(id)
	m.State = models.State(state)

	if cID.Valid {
		m.Classification = &classificationmodels.Classification{
			ID:        domain.ClassificationID(cID.UUID),
			Name:      cName.String,
			CreatedAt: cCreated.Time,
			UpdatedAt: cUpdated.Time,
		}
		if atID.Valid {
			m.Classification.AssetType = &assetmodels.AssetType{
				ID:        domain.AssetTypeID(atID.UUID),
				Name:      atName.String,
				CreatedAt: atCreated.Time,
				UpdatedAt: atUpdated.Time,
			}
		}
	}
	return &m, nil
}
