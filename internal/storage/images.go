package storage

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/google/uuid"
)

// URLPrefix is the public path the router serves saved images under.
const URLPrefix = "/uploads"

var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ImageStore writes profile images to a local directory. File lifetime is
// managed by the record service alongside the owning record.
type ImageStore struct {
	dir string
	log *slog.Logger
}

func NewImageStore(dir string, log *slog.Logger) (*ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &ImageStore{dir: dir, log: log}, nil
}

// Save writes the upload under a fresh uuid name and returns the public
// reference ("/uploads/<name>"). Rejects non-image extensions.
func (s *ImageStore) Save(fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExts[ext] {
		return "", &user.ValidationError{
			Violations: []string{"Profile image must be a JPG, PNG, GIF or WebP file"},
		}
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(s.dir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		_ = os.Remove(dst)
		return "", err
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}

	return URLPrefix + "/" + name, nil
}

// Remove deletes the file behind a previously returned reference. A missing
// file is not an error; only the basename of the reference is used, so a
// reference can never reach outside the store directory.
func (s *ImageStore) Remove(ref string) error {
	name := path.Base(ref)
	if name == "." || name == "/" || name == "" {
		return nil
	}

	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// Dir exposes the backing directory for static serving.
func (s *ImageStore) Dir() string {
	return s.dir
}
