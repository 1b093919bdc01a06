package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores uploaded documents on the local filesystem.
type LocalStorage struct {
	basePath string
	baseURL  string
}

// NewLocalStorage creates a LocalStorage rooted at basePath. Stored files are
// addressed by URL paths under baseURL.
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// SaveFileWithPath stores the upload under a subdirectory (e.g. "syllabi",
// "transcripts", "catalog") with a generated name, keeping the original
// extension.
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	dir := filepath.Join(ls.basePath, subPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	ext := filepath.Ext(fileHeader.Filename)
	filename := uuid.New().String() + ext
	dst := filepath.Join(dir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		// Remove the partial file so a retried upload does not collide with it.
		_ = os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return ls.baseURL + "/" + subPath + "/" + filename, nil
}

// SaveFile stores the upload directly under the base path.
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return ls.SaveFileWithPath(fileHeader, "")
}

// Exists reports whether the stored file behind fileURL is present.
func (ls *LocalStorage) Exists(fileURL string) bool {
	_, err := os.Stat(ls.GetFullPath(fileURL))
	return err == nil
}

// DeleteFile removes a stored file given its URL path.
func (ls *LocalStorage) DeleteFile(fileURL string) error {
	fullPath := ls.GetFullPath(fileURL)
	if fullPath == "" {
		return fmt.Errorf("invalid file URL: %s", fileURL)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GetFullPath maps a stored file URL back to its filesystem path.
func (ls *LocalStorage) GetFullPath(fileURL string) string {
	rel := strings.TrimPrefix(fileURL, ls.baseURL)
	rel = strings.TrimPrefix(rel, "/")
	// Guard against traversal out of the storage root.
	clean := filepath.Clean(rel)
	if strings.HasPrefix(clean, "..") {
		return ""
	}
	return filepath.Join(ls.basePath, clean)
}
