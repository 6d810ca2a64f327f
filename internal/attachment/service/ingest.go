package service

import (
	"context"
	"fmt"
	"io"
	"path"

	"meldingen/internal/attachment/models"
)

// Ingestor stores an attachment's binary and fills in the file path fields.
// Optimized and thumbnail renditions are produced by an external pipeline
// that updates the record later; ingest only guarantees the original.
type Ingestor interface {
	Ingest(ctx context.Context, attachment *models.Attachment, data io.Reader) error
}

// FilesystemIngestor writes originals under
// baseDir/<melding id>/<attachment id>/<original filename>.
type FilesystemIngestor struct {
	fs      Filesystem
	baseDir string
}

func NewFilesystemIngestor(fs Filesystem, baseDir string) *FilesystemIngestor {
	return &FilesystemIngestor{fs: fs, baseDir: baseDir}
}

func (i *FilesystemIngestor) Ingest(ctx context.Context, attachment *models.Attachment, data io.Reader) error {
	target := path.Join(i.baseDir, attachment.MeldingID.String(), attachment.ID.String(), attachment.OriginalFilename)
	if err := i.fs.Write(ctx, target, data); err != nil {
		return fmt.Errorf("write original: %w", err)
	}
	attachment.FilePath = target
	return nil
}
