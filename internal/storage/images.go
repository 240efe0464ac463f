// Package storage keeps uploaded product images.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	ErrNotAnImage      = errors.New("uploaded file is not an image")
	ErrInvalidFileName = errors.New("invalid image file name")
)

// sniffLen is how many leading bytes are inspected to detect the content type
const sniffLen = 3072

// ImageStore saves product images under generated names in a flat directory
type ImageStore struct {
	fs     afero.Fs
	logger *zap.Logger
}

// NewLocalImageStore stores images in dir on the local disk, creating it if needed
func NewLocalImageStore(dir string, logger *zap.Logger) (*ImageStore, error) {
	osFs := afero.NewOsFs()
	if err := osFs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return NewImageStore(afero.NewBasePathFs(osFs, dir), logger), nil
}

// NewImageStore stores images at the root of fs
func NewImageStore(fs afero.Fs, logger *zap.Logger) *ImageStore {
	return &ImageStore{fs: fs, logger: logger}
}

// Save writes the image read from r and returns its generated file name.
// The extension comes from originalName, or from the detected type when
// originalName has none.
func (s *ImageStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !strings.HasPrefix(detected.String(), "image/") {
		return "", ErrNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = detected.Extension()
	}
	fileName := uuid.NewString() + ext

	f, err := s.fs.Create("/" + fileName)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(f, io.MultiReader(bytes.NewReader(head), r)); err != nil {
		f.Close()
		s.fs.Remove("/" + fileName)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	if err := f.Close(); err != nil {
		s.fs.Remove("/" + fileName)
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	s.logger.Debug("Image saved", zap.String("file", fileName), zap.String("type", detected.String()))
	return fileName, nil
}

// Delete removes an image. Deleting a file that is already gone is not an error.
func (s *ImageStore) Delete(ctx context.Context, fileName string) error {
	if fileName == "" {
		return nil
	}
	if filepath.Base(fileName) != fileName || fileName == "." || fileName == ".." {
		return ErrInvalidFileName
	}

	if err := s.fs.Remove("/" + fileName); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("Image already removed", zap.String("file", fileName))
			return nil
		}
		return fmt.Errorf("failed to delete image: %w", err)
	}

	return nil
}

// Handler serves stored images read-only
func (s *ImageStore) Handler() http.Handler {
	return http.FileServer(afero.NewHttpFs(afero.NewReadOnlyFs(s.fs)))
}
