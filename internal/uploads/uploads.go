// Package uploads stores multipart image attachments (payment proofs and
// profile photos) on local disk under unique names.
package uploads

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"

	"slicecraft/internal/apperr"
	"slicecraft/pkg/logger"
)

// MaxFileSize caps uploads at 5MB.
const MaxFileSize = 5 << 20

const profilePhotoMaxWidth = 800

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

type Store struct {
	dir    string
	logger *logger.Logger
}

func NewStore(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &Store{dir: dir, logger: log.WithComponent("uploads")}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

// SaveImage validates and stores one uploaded image, returning its public
// path ("/uploads/<name>"). field prefixes the stored filename.
func (s *Store) SaveImage(field string, file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.checkFile(header); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := fmt.Sprintf("%s-%s%s", field, uuid.New().String(), ext)
	dst := filepath.Join(s.dir, filename)

	out, err := os.Create(dst)
	if err != nil {
		s.logger.Error("Failed to create upload file", "error", err, "path", dst)
		return "", fmt.Errorf("failed to store upload: %v", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(file, MaxFileSize)); err != nil {
		s.logger.Error("Failed to write upload file", "error", err, "path", dst)
		return "", fmt.Errorf("failed to store upload: %v", err)
	}

	s.logger.Info("Stored upload", "filename", filename, "size", header.Size)
	return "/uploads/" + filename, nil
}

// SaveProfilePhoto stores an uploaded photo downscaled to a bounded width and
// re-encoded as JPEG.
func (s *Store) SaveProfilePhoto(file multipart.File, header *multipart.FileHeader) (string, error) {
	if err := s.checkFile(header); err != nil {
		return "", err
	}

	img, _, err := image.Decode(io.LimitReader(file, MaxFileSize))
	if err != nil {
		s.logger.Warn("Failed to decode profile photo", "error", err)
		return "", apperr.Validation("uploaded file is not a valid image")
	}

	scaled := resize.Resize(profilePhotoMaxWidth, 0, img, resize.Lanczos3)

	filename := fmt.Sprintf("%s.jpg", uuid.New().String())
	dst := filepath.Join(s.dir, filename)

	out, err := os.Create(dst)
	if err != nil {
		s.logger.Error("Failed to create photo file", "error", err, "path", dst)
		return "", fmt.Errorf("failed to store photo: %v", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, scaled, &jpeg.Options{Quality: 80}); err != nil {
		s.logger.Error("Failed to encode photo", "error", err, "path", dst)
		return "", fmt.Errorf("failed to store photo: %v", err)
	}

	s.logger.Info("Stored profile photo", "filename", filename)
	return "/uploads/" + filename, nil
}

// Remove deletes a previously stored upload by its public path. Missing files
// are tolerated.
func (s *Store) Remove(publicPath string) {
	name := filepath.Base(publicPath)
	if name == "." || name == "/" || name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("Failed to remove upload", "error", err, "path", publicPath)
	}
}

func (s *Store) checkFile(header *multipart.FileHeader) error {
	if header.Size > MaxFileSize {
		return apperr.Validation("file exceeds the 5MB size limit")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return apperr.Validation("please upload images only (jpeg, jpg, png, gif)")
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return apperr.Validation("please upload images only (jpeg, jpg, png, gif)")
	}
	return nil
}
