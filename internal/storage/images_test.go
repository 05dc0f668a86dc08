package storage

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bnvdash/user-directory/internal/domain/user"
)

func newStore(t *testing.T) (*ImageStore, string) {
	t.Helper()

	dir := t.TempDir()

	s, err := NewImageStore(dir, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewImageStore: %v", err)
	}

	return s, dir
}

func upload(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer

	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile("profileImage", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}

	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	form, err := multipart.NewReader(&buf, mw.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}

	return form.File["profileImage"][0]
}

func TestSaveAndRemove(t *testing.T) {
	s, dir := newStore(t)

	ref, err := s.Save(upload(t, "avatar.PNG", []byte("png-bytes")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(ref, URLPrefix+"/") {
		t.Fatalf("expected public ref, got %q", ref)
	}

	if !strings.HasSuffix(ref, ".png") {
		t.Fatalf("expected lowercased extension, got %q", ref)
	}

	name := strings.TrimPrefix(ref, URLPrefix+"/")

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if string(data) != "png-bytes" {
		t.Fatalf("stored content mismatch: %q", data)
	}

	if err := s.Remove(ref); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err %v", err)
	}
}

func TestSave_RejectsUnknownExtension(t *testing.T) {
	s, dir := newStore(t)

	tests := []string{"script.sh", "resume.pdf", "noext", "archive.tar.gz"}

	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			_, err := s.Save(upload(t, filename, []byte("x")))

			var vErr *user.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
		})
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}

	if len(entries) != 0 {
		t.Fatalf("expected nothing written, got %d entries", len(entries))
	}
}

func TestSave_UniqueNames(t *testing.T) {
	s, _ := newStore(t)

	a, err := s.Save(upload(t, "same.jpg", []byte("a")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := s.Save(upload(t, "same.jpg", []byte("b")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if a == b {
		t.Fatalf("expected distinct refs, both %q", a)
	}
}

func TestRemove_MissingFileIsFine(t *testing.T) {
	s, _ := newStore(t)

	if err := s.Remove(URLPrefix + "/gone.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestRemove_IgnoresPathTraversal(t *testing.T) {
	s, dir := newStore(t)

	outside := filepath.Join(filepath.Dir(dir), "outside.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if err := s.Remove("../outside.txt"); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside the store dir must survive: %v", err)
	}
}
