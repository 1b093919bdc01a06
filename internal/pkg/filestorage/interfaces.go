package filestorage

import "mime/multipart"

// FileStorage is the blob-store contract the engine consumes: store bytes,
// get back an opaque path. Document writes happen before the transactional
// state change commits, so a failed write aborts the whole submission.
type FileStorage interface {
	// SaveFile stores a file under the base path and returns its URL path
	SaveFile(fileHeader *multipart.FileHeader) (string, error)

	// SaveFileWithPath stores a file under the given subdirectory
	SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error)

	// Exists reports whether a previously returned path still resolves
	Exists(filePath string) bool

	// DeleteFile removes a file from storage
	DeleteFile(filePath string) error

	// GetFullPath returns the full filesystem path for a stored file URL
	GetFullPath(fileURL string) string
}
