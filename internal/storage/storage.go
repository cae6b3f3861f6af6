package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Storage persists uploaded files (avatars) and resolves public URLs.
type Storage interface {
	Save(file *multipart.FileHeader, subdir string) (string, error)
	Delete(publicURL string) error
}

// LocalStorage writes files under BasePath and serves them from BaseURL.
type LocalStorage struct {
	BasePath string
	BaseURL  string
}

func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s: %w", basePath, err)
	}
	return &LocalStorage{BasePath: basePath, BaseURL: baseURL}, nil
}

// Save stores the file under a random name preserving the extension and
// returns its public URL.
func (s *LocalStorage) Save(file *multipart.FileHeader, subdir string) (string, error) {
	dir := filepath.Join(s.BasePath, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + filepath.Ext(file.Filename)
	dst := filepath.Join(dir, name)

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dst)
		return "", err
	}

	return s.BaseURL + "/" + subdir + "/" + name, nil
}

func (s *LocalStorage) Delete(publicURL string) error {
	rel, ok := strings.CutPrefix(publicURL, s.BaseURL+"/")
	if !ok {
		return fmt.Errorf("url %q is outside this storage", publicURL)
	}
	return os.Remove(filepath.Join(s.BasePath, filepath.FromSlash(rel)))
}
