package models

import (
	"time"

	assetmodels "meldingen/internal/asset/models"
	"meldingen/pkg/domain"
)

// Classification is the categorical label attached to a melding's free text.
// AssetType, when set, names the kind of map asset a melding of this
// classification may reference.
type Classification struct {
	ID        domain.ClassificationID
	Name      string
	AssetType *assetmodels.AssetType
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AssetTypeID returns the id of the associated asset type, or the zero id
// when the classification references none.
func (c *Classification) AssetTypeID() domain.AssetTypeID {
	if c == nil || c.AssetType == nil {
		return domain.AssetTypeID{}
	}
	return c.AssetType.ID
}
