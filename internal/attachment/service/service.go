// Package service implements the attachment actions: upload, variant-aware
// download, listing, and deletion, all guarded by the melder's possession
// token. Binary storage itself lives behind the Filesystem boundary.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"meldingen/internal/attachment/models"
	meldingmodels "meldingen/internal/melding/models"
	"meldingen/pkg/domain"
	"meldingen/pkg/platform/sentinel"
)

// Store is the attachment repository contract.
type Store interface {
	Save(ctx context.Context, a models.Attachment) error
	Retrieve(ctx context.Context, id domain.AttachmentID) (*models.Attachment, error)
	FindByMelding(ctx context.Context, meldingID domain.MeldingID) ([]models.Attachment, error)
	Delete(ctx context.Context, id domain.AttachmentID) error
}

// TokenVerifier guards every attachment action with the melder's token.
type TokenVerifier interface {
	Verify(ctx context.Context, id domain.MeldingID, token string) (*meldingmodels.Melding, error)
}

// Filesystem is the binary storage boundary.
type Filesystem interface {
	Write(ctx context.Context, path string, data io.Reader) error
	Read(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Factory builds a new attachment record for a melding.
type Factory interface {
	New(meldingID domain.MeldingID, originalFilename, mediaType string) models.Attachment
}

// DefaultFactory assigns a fresh id and stamps the creation time.
type DefaultFactory struct{}

func (DefaultFactory) New(meldingID domain.MeldingID, originalFilename, mediaType string) models.Attachment {
	return models.Attachment{
		ID:                domain.NewAttachmentID(),
		MeldingID:         meldingID,
		OriginalFilename:  originalFilename,
		OriginalMediaType: mediaType,
		CreatedAt:         time.Now(),
	}
}

type Service struct {
	store     Store
	verifier  TokenVerifier
	fs        Filesystem
	factory   Factory
	mediaType MediaTypeValidator
	integrity MediaTypeIntegrityValidator
	ingestor  Ingestor
	logger    *slog.Logger
}

func New(store Store, verifier TokenVerifier, fs Filesystem, factory Factory,
	mediaType MediaTypeValidator, integrity MediaTypeIntegrityValidator,
	ingestor Ingestor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		verifier:  verifier,
		fs:        fs,
		factory:   factory,
		mediaType: mediaType,
		integrity: integrity,
		ingestor:  ingestor,
		logger:    logger,
	}
}

// Upload validates and stores a new attachment. The header is the first
// bytes of data, already consumed by the caller for sniffing; data is the
// full stream including those bytes.
func (s *Service) Upload(ctx context.Context, meldingID domain.MeldingID, token, originalFilename, mediaType string, header []byte, data io.Reader) (*models.Attachment, error) {
	melding, err := s.verifier.Verify(ctx, meldingID, token)
	if err != nil {
		return nil, err
	}

	if err := s.mediaType.Validate(mediaType); err != nil {
		return nil, err
	}
	if err := s.integrity.Validate(mediaType, header); err != nil {
		return nil, err
	}

	attachment := s.factory.New(melding.ID, originalFilename, mediaType)

	if err := s.ingestor.Ingest(ctx, &attachment, data); err != nil {
		return nil, fmt.Errorf("ingest attachment: %w", err)
	}

	if err := s.store.Save(ctx, attachment); err != nil {
		return nil, fmt.Errorf("save attachment: %w", err)
	}
	return &attachment, nil
}

// Download streams the requested variant. A variant the ingest pipeline has
// not produced yet reads as not found, as does an attachment hanging off a
// different melding.
func (s *Service) Download(ctx context.Context, meldingID domain.MeldingID, attachmentID domain.AttachmentID, token string, variant models.Variant) (io.ReadCloser, string, error) {
	melding, err := s.verifier.Verify(ctx, meldingID, token)
	if err != nil {
		return nil, "", err
	}

	attachment, err := s.owned(ctx, melding.ID, attachmentID)
	if err != nil {
		return nil, "", err
	}

	path, mediaType := attachment.FilePath, attachment.OriginalMediaType
	switch variant {
	case models.VariantOriginal:
	case models.VariantOptimized:
		if attachment.OptimizedPath == nil {
			return nil, "", fmt.Errorf("optimized variant: %w", sentinel.ErrNotFound)
		}
		path, mediaType = *attachment.OptimizedPath, deref(attachment.OptimizedMediaType)
	case models.VariantThumbnail:
		if attachment.ThumbnailPath == nil {
			return nil, "", fmt.Errorf("thumbnail variant: %w", sentinel.ErrNotFound)
		}
		path, mediaType = *attachment.ThumbnailPath, deref(attachment.ThumbnailMediaType)
	default:
		return nil, "", fmt.Errorf("unknown variant %q: %w", variant, sentinel.ErrNotFound)
	}

	reader, err := s.fs.Read(ctx, path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return reader, mediaType, nil
}

// List returns the melding's attachments under token guard.
func (s *Service) List(ctx context.Context, meldingID domain.MeldingID, token string) ([]models.Attachment, error) {
	melding, err := s.verifier.Verify(ctx, meldingID, token)
	if err != nil {
		return nil, err
	}
	return s.store.FindByMelding(ctx, melding.ID)
}

// Delete removes the attachment record, then its files best-effort. A file
// that is already gone does not fail the deletion.
func (s *Service) Delete(ctx context.Context, meldingID domain.MeldingID, attachmentID domain.AttachmentID, token string) error {
	melding, err := s.verifier.Verify(ctx, meldingID, token)
	if err != nil {
		return err
	}

	attachment, err := s.owned(ctx, melding.ID, attachmentID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, attachmentID); err != nil {
		return err
	}

	paths := []string{attachment.FilePath}
	if attachment.OptimizedPath != nil {
		paths = append(paths, *attachment.OptimizedPath)
	}
	if attachment.ThumbnailPath != nil {
		paths = append(paths, *attachment.ThumbnailPath)
	}
	for _, path := range paths {
		if err := s.fs.Delete(ctx, path); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "attachment file cleanup failed",
				"attachment_id", attachmentID.String(),
				"path", path,
				"error", err,
			)
		}
	}
	return nil
}

func (s *Service) owned(ctx context.Context, meldingID domain.MeldingID, attachmentID domain.AttachmentID) (*models.Attachment, error) {
	attachment, err := s.store.Retrieve(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	if attachment.MeldingID != meldingID {
		return nil, fmt.Errorf("attachment %s: %w", attachmentID, sentinel.ErrNotFound)
	}
	return attachment, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
