package models

import (
	"time"

	assetmodels "meldingen/internal/asset/models"
	attachmentmodels "meldingen/internal/attachment/models"
	classificationmodels "meldingen/internal/classification/models"
	"meldingen/pkg/domain"
)

// Melding is a citizen-submitted issue record. Its State only changes through
// a state-machine validated transition; every other field is mutated by the
// transition actions in internal/melding/service.
type Melding struct {
	ID   domain.MeldingID
	Text string

	Classification *classificationmodels.Classification

	// Token is the melder's possession credential for anonymous
	// continuation. A nil token means the melding can no longer be edited
	// by the melder. A TokenExpires in the past invalidates the token
	// regardless of equality.
	Token        *string
	TokenExpires *time.Time

	Phone *string
	Email *string

	Lat *float64
	Lon *float64

	Street              *string
	HouseNumber         *int
	HouseNumberAddition *string
	PostalCode          *string
	City                *string

	State State

	Attachments []attachmentmodels.Attachment
	Assets      []assetmodels.Asset

	CreatedAt time.Time
	UpdatedAt time.Time

	// Version implements optimistic concurrency at the persistence
	// boundary. Stores reject a Save whose version lost against a
	// concurrent writer; the engine itself never reads it.
	Version int64
}

// HasLocation reports whether a coordinate has been submitted.
func (m *Melding) HasLocation() bool {
	return m.Lat != nil && m.Lon != nil
}

// ClearLocation drops the coordinate and the enriched address fields.
func (m *Melding) ClearLocation() {
	m.Lat = nil
	m.Lon = nil
	m.Street = nil
	m.HouseNumber = nil
	m.HouseNumberAddition = nil
	m.PostalCode = nil
	m.City = nil
}
