package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/akinalp/shopapi/pkg"
)

// DefaultMaxUploadSize is the image size cap when none is configured (5 MiB).
const DefaultMaxUploadSize int64 = 5 << 20

// PublicUploadPath is the URL prefix stored images are served under.
const PublicUploadPath = "/uploads/"

// UploadService validates and stores product images.
type UploadService interface {
	// CheckName runs the extension check alone, so a streaming reader can
	// reject a file from its part header before reading the content.
	CheckName(name string) error
	// Save validates name and size, then writes r to the upload directory
	// under a fresh random name and returns its public path.
	Save(name string, size int64, r io.Reader) (string, error)
	// Remove deletes an image previously returned by Save. A missing file
	// and a path outside the upload directory are both ignored.
	Remove(storedPath string) error
}

type uploadService struct {
	dir     string
	maxSize int64
	allowed map[string]bool
}

// NewUploadService is the constructor. webp joins the allow-list when
// allowWebP is set.
func NewUploadService(dir string, maxSize int64, allowWebP bool) UploadService {
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	allowed := map[string]bool{
		"jpg":  true,
		"jpeg": true,
		"png":  true,
		"gif":  true,
	}
	if allowWebP {
		allowed["webp"] = true
	}

	return &uploadService{dir: dir, maxSize: maxSize, allowed: allowed}
}

func (s *uploadService) CheckName(name string) error {
	_, err := s.extension(name)
	return err
}

// extension sanitizes name and returns its lower-cased extension when it is
// on the allow-list.
func (s *uploadService) extension(name string) (string, error) {
	clean := sanitizeFilename(name)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(clean), "."))
	if !s.allowed[ext] {
		return "", fmt.Errorf("%w: %q", pkg.ErrUnsupportedFileType, clean)
	}
	return ext, nil
}

func (s *uploadService) Save(name string, size int64, r io.Reader) (string, error) {
	ext, err := s.extension(name)
	if err != nil {
		return "", err
	}

	if size > s.maxSize {
		return "", fmt.Errorf("%w (max %dMB)", pkg.ErrFileTooLarge, s.maxSize/(1<<20))
	}

	diskName := strings.ReplaceAll(uuid.New().String(), "-", "") + "." + ext

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, err)
	}

	dest := filepath.Join(s.dir, diskName)
	if err := writeExactly(dest, io.LimitReader(r, s.maxSize+1), size); err != nil {
		os.Remove(dest)
		return "", err
	}

	return PublicUploadPath + diskName, nil
}

// writeExactly copies src into a new file at dest and fails unless exactly
// want bytes arrive.
func writeExactly(dest string, src io.Reader, want int64) error {
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, err)
	}

	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		return fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, copyErr)
	case closeErr != nil:
		return fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, closeErr)
	case n != want:
		return fmt.Errorf("%w: wrote %d of %d bytes", pkg.ErrStorageWriteFailed, n, want)
	}
	return nil
}

func (s *uploadService) Remove(storedPath string) error {
	if !strings.HasPrefix(storedPath, PublicUploadPath) {
		return nil
	}
	name := strings.TrimPrefix(storedPath, PublicUploadPath)
	if name == "" || name != path.Base(name) || strings.ContainsAny(name, `\:`) || name == ".." {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove image %s: %w", name, err)
	}
	return nil
}

// sanitizeFilename keeps only the last path segment of a client-supplied
// name, so "../../etc/passwd.png" becomes "passwd.png".
func sanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}

	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '\x00':
			return -1
		}
		return r
	}, name)

	if name == "" || name == "." || name == ".." {
		return "unnamed"
	}
	return name
}
