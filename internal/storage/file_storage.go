// Package storage implements the local-disk file store backing product
// image uploads. Stored files are addressed by a server-relative reference
// of the form /uploads/<name>, which is also the path they are served under.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"product-catalog/internal/apperr"
)

// PublicPrefix is the URL prefix stored references carry.
const PublicPrefix = "/uploads/"

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Upload describes one accepted multipart file, decoupled from the HTTP
// parsing that produced it.
type Upload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
	Filename    string
}

type DiskStore struct {
	dir      string
	maxBytes int64
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Storage("create upload dir", err)
	}
	return &DiskStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

// Store validates and persists an upload, returning its reference path.
// The generated name combines a random component with the original
// extension, so concurrent uploads cannot collide.
func (s *DiskStore) Store(up *Upload) (string, error) {
	ext, ok := allowedTypes[strings.ToLower(up.ContentType)]
	if !ok {
		return "", apperr.Validation("only JPEG, PNG, and GIF files are allowed")
	}
	if up.Size > s.maxBytes {
		return "", apperr.Validation("file exceeds the %d byte limit", s.maxBytes)
	}

	if orig := filepath.Ext(up.Filename); orig != "" {
		ext = strings.ToLower(orig)
	}
	name := "image-" + uuid.NewString() + ext

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", apperr.Storage("create file", err)
	}

	// Size from the multipart header is client-declared; enforce the cap on
	// the actual bytes as well.
	written, err := io.Copy(dst, io.LimitReader(up.Reader, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", apperr.Storage("write file", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", apperr.Validation("file exceeds the %d byte limit", s.maxBytes)
	}

	return PublicPrefix + name, nil
}

// Delete removes a stored file by its reference path. References outside
// the store's namespace (the default placeholder URL in particular) and
// already-missing files are ignored.
func (s *DiskStore) Delete(ref string) error {
	if !strings.HasPrefix(ref, PublicPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(ref, PublicPrefix))
	if name == "." || name == ".." || name == "/" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return apperr.Storage("delete file", err)
	}
	return nil
}
