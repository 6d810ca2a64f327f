package models

import (
	"time"

	"meldingen/pkg/domain"
)

// Variant selects which rendition of an attachment to serve.
type Variant string

const (
	VariantOriginal  Variant = "original"
	VariantOptimized Variant = "optimized"
	VariantThumbnail Variant = "thumbnail"
)

// Attachment is a binary file uploaded alongside a melding. The optimized and
// thumbnail fields are filled in by the ingest pipeline after upload; until
// then only the original is available.
type Attachment struct {
	ID                domain.AttachmentID
	MeldingID         domain.MeldingID
	OriginalFilename  string
	OriginalMediaType string
	FilePath          string

	OptimizedPath      *string
	OptimizedMediaType *string
	ThumbnailPath      *string
	ThumbnailMediaType *string

	CreatedAt time.Time
}
