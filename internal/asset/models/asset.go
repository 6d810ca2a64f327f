package models

import (
	"time"

	"meldingen/pkg/domain"
)

// AssetType describes a kind of map feature (lamppost, container, tree) that
// meldingen of a matching classification may reference.
type AssetType struct {
	ID        domain.AssetTypeID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Asset is an external geospatial feature referenced by a melding. MeldingID
// is a weak back-reference: the melding owns the association through its
// assets collection, the asset does not own the melding. A lookup that
// reaches an asset whose MeldingID differs from the melding it was reached
// through is an integrity violation, not a no-op.
type Asset struct {
	ID          domain.AssetID
	ExternalID  string
	AssetTypeID domain.AssetTypeID
	MeldingID   domain.MeldingID
}
