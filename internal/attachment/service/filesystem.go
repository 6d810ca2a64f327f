package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"meldingen/pkg/platform/sentinel"
)

// LocalFilesystem stores binaries on local disk, rooted at a directory so
// attachment paths cannot escape it.
type LocalFilesystem struct {
	root string
}

func NewLocalFilesystem(root string) *LocalFilesystem {
	return &LocalFilesystem{root: root}
}

func (fs *LocalFilesystem) Write(_ context.Context, path string, data io.Reader) error {
	full := filepath.Join(fs.root, filepath.Clean("/"+path))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return fmt.Errorf("create attachment directory: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return fmt.Errorf("write attachment file: %w", err)
	}
	return nil
}

func (fs *LocalFilesystem) Read(_ context.Context, path string) (io.ReadCloser, error) {
	full := filepath.Join(fs.root, filepath.Clean("/"+path))
	f, err := os.Open(full)
	if os.IsNotExist(err) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open attachment file: %w", err)
	}
	return f, nil
}

func (fs *LocalFilesystem) Delete(_ context.Context, path string) error {
	full := filepath.Join(fs.root, filepath.Clean("/"+path))
	err := os.Remove(full)
	if os.IsNotExist(err) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove attachment file: %w", err)
	}
	return nil
}
