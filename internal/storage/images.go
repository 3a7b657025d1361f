package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Directories under the upload root.
const (
	ProductImages = "products"
	BuyerImages   = "buyers"
	SellerImages  = "sellers"
)

// ErrUnsupportedImage is returned for uploads outside the jpeg/jpg/png/gif allow-list.
var ErrUnsupportedImage = errors.New("only image files are allowed (jpeg, jpg, png, gif)")

var (
	allowedExtensions = map[string]bool{".jpeg": true, ".jpg": true, ".png": true, ".gif": true}
	allowedDeclared   = map[string]bool{"image/jpeg": true, "image/jpg": true, "image/png": true, "image/gif": true}
	allowedSniffed    = []string{"image/jpeg", "image/png", "image/gif"}
)

// Upload is an image received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ImageStore persists uploaded images and hands back a relative reference.
type ImageStore interface {
	Save(dir string, upload Upload) (string, error)
	Delete(ref string) error
}

// FSImageStore stores images on an afero filesystem rooted at the upload directory.
type FSImageStore struct {
	fs afero.Fs
}

func NewFSImageStore(fs afero.Fs) *FSImageStore {
	return &FSImageStore{fs: fs}
}

// NewDiskImageStore roots the store at dir on the OS filesystem.
func NewDiskImageStore(dir string) (*FSImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return NewFSImageStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// Save validates the upload by extension, declared content type and sniffed content,
// then writes it as dir/<uuid><ext>.
func (s *FSImageStore) Save(dir string, upload Upload) (string, error) {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	if !allowedExtensions[ext] || !allowedDeclared[strings.ToLower(upload.ContentType)] {
		return "", ErrUnsupportedImage
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	head = head[:n]
	if !isOneOf(mimetype.Detect(head), allowedSniffed) {
		return "", ErrUnsupportedImage
	}

	ref := path.Join(dir, uuid.New().String()+ext)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create image dir %s: %w", dir, err)
	}
	if err := afero.WriteReader(s.fs, ref, io.MultiReader(bytes.NewReader(head), upload.Body)); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", ref, err)
	}
	return ref, nil
}

// Delete removes ref. A missing file is not an error.
func (s *FSImageStore) Delete(ref string) error {
	if ref == "" {
		return nil
	}
	if err := s.fs.Remove(path.Clean(ref)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image %s: %w", ref, err)
	}
	return nil
}

func isOneOf(m *mimetype.MIME, types []string) bool {
	for _, t := range types {
		if m.Is(t) {
			return true
		}
	}
	return false
}
