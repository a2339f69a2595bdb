// Package storage keeps uploaded files such as profile pictures.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

// sniffLen is how much of an upload is read to detect its content type.
const sniffLen = 3072

var allowedImageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
}

// BlobStore stores opaque files by name.
type BlobStore interface {
	Put(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// LocalStore is a BlobStore backed by a directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and stores files in it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Put writes r under name, replacing any existing file. The content is
// written to a temporary file first so readers never see a partial file.
func (s *LocalStore) Put(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := CleanName(name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".incoming-*")
	if err != nil {
		return apperrors.Storage(err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return apperrors.Storage(err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Storage(err)
	}
	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

// Open returns the file stored under name and its sniffed content type.
func (s *LocalStore) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	name, err := CleanName(name)
	if err != nil {
		return nil, "", apperrors.NotFound("file")
	}

	path := filepath.Join(s.dir, name)
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperrors.NotFound("file")
		}
		return nil, "", apperrors.Storage(err)
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperrors.NotFound("file")
		}
		return nil, "", apperrors.Storage(err)
	}
	return f, mt.String(), nil
}

// CleanName reduces name to a plain file name so callers cannot escape the
// store directory.
func CleanName(name string) (string, error) {
	base := filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, "\\", "/")))
	if base == "/" || base == "." || base == ".." || strings.HasPrefix(base, ".") {
		return "", apperrors.InvalidRequest("invalid file name", "filename")
	}
	return base, nil
}

// ImageExt returns the lower-cased extension of filename when it is one of
// the accepted picture formats.
func ImageExt(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, allowedImageExts[ext]
}

// SniffImage reports whether r starts with image content. The returned reader
// yields the full content, including the bytes consumed for detection.
func SniffImage(r io.Reader) (io.Reader, bool, error) {
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(r, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, false, err
	}
	buf = buf[:n]
	full := io.MultiReader(bytes.NewReader(buf), r)
	if n == 0 {
		return full, false, nil
	}
	return full, strings.HasPrefix(mimetype.Detect(buf).String(), "image/"), nil
}
