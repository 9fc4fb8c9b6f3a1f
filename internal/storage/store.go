package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-board-api/internal/response"
)

// FileStore validates and persists uploaded attachments. Stored names are
// random per call, so concurrent stores never contend on a path and the
// user-supplied filename is never used to address storage.
type FileStore struct {
	backend     Backend
	maxBytes    int64
	allowedExts map[string]bool
	logger      *zap.Logger
	now         func() time.Time
}

// NewFileStore creates a FileStore over the given backend. allowedExts are
// extensions without the dot; they are lower-cased on the way in.
func NewFileStore(backend Backend, maxBytes int64, allowedExts []string, logger *zap.Logger) *FileStore {
	exts := make(map[string]bool, len(allowedExts))
	for _, e := range allowedExts {
		exts[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))] = true
	}

	logger.Info("File store initialized",
		zap.Int64("max_upload_bytes", maxBytes),
		zap.Strings("allowed_extensions", allowedExts),
	)

	return &FileStore{
		backend:     backend,
		maxBytes:    maxBytes,
		allowedExts: exts,
		logger:      logger,
		now:         time.Now,
	}
}

// Validate checks an upload against the configured limits without touching
// storage. All failures are VALIDATION_ERROR app errors.
func (s *FileStore) Validate(upload *Upload) error {
	if upload.IsEmpty() {
		return response.NewAppError(response.ErrCodeValidation, "uploaded file is empty", "")
	}
	if upload.Size > s.maxBytes {
		return response.NewAppError(response.ErrCodeValidation,
			fmt.Sprintf("uploaded file exceeds the size limit (max %d bytes, got %d)", s.maxBytes, upload.Size), "")
	}
	name := strings.TrimSpace(upload.Filename)
	if name == "" {
		return response.NewAppError(response.ErrCodeValidation, "uploaded file has no name", "")
	}
	ext := Extension(name)
	if ext == "" {
		return response.NewAppError(response.ErrCodeValidation, "uploaded file has no extension", "")
	}
	if !s.allowedExts[ext] {
		return response.NewAppError(response.ErrCodeValidation,
			fmt.Sprintf("file extension %q is not allowed", ext), "")
	}
	return nil
}

// Store validates the upload, then writes its bytes under
// <category>/<yyyy-MM-dd>/<uuid><.ext>. Day bucketing uses the ingestion
// date, which bounds per-directory fan-out under sustained upload volume.
// A name collision overwrites; the random token makes that unobservable in
// practice.
func (s *FileStore) Store(ctx context.Context, upload *Upload, category string) (*StoredFile, error) {
	if err := s.Validate(upload); err != nil {
		return nil, err
	}

	// Case-preserving extension for the stored name
	origExt := ""
	if i := strings.LastIndex(upload.Filename, "."); i >= 0 {
		origExt = upload.Filename[i:]
	}
	storedName := uuid.New().String() + origExt
	datePath := s.now().Format("2006-01-02")
	relPath := category + "/" + datePath + "/"

	if err := s.backend.Save(ctx, relPath+storedName, upload.Content); err != nil {
		s.logger.Error("Failed to store uploaded file",
			zap.String("original_name", upload.Filename),
			zap.String("stored_name", storedName),
			zap.String("path", relPath),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeStorageIO, "failed to store uploaded file", err.Error())
	}

	s.logger.Info("Stored uploaded file",
		zap.String("original_name", upload.Filename),
		zap.String("stored_name", storedName),
		zap.String("path", relPath),
		zap.Int64("size", upload.Size),
	)

	return &StoredFile{
		StoredName: storedName,
		Path:       relPath,
		Size:       upload.Size,
		Extension:  Extension(upload.Filename),
	}, nil
}

// Load opens the stored bytes for reading. A missing file, an unreadable
// file, or a path that escapes the storage root all surface as NOT_FOUND.
func (s *FileStore) Load(ctx context.Context, relPath, storedName string) (io.ReadCloser, error) {
	rc, err := s.backend.Open(ctx, joinKey(relPath, storedName))
	if err != nil {
		if err == ErrNotFound {
			return nil, response.NewAppError(response.ErrCodeNotFound, "file not found", relPath+storedName)
		}
		s.logger.Error("Failed to load stored file",
			zap.String("path", relPath),
			zap.String("stored_name", storedName),
			zap.Error(err),
		)
		return nil, response.NewAppError(response.ErrCodeStorageIO, "failed to load stored file", err.Error())
	}
	return rc, nil
}

// Delete removes the stored bytes best-effort. Deletion is always a secondary
// effect of a broader mutation, so a missing file is fine and I/O failures
// are logged and swallowed.
func (s *FileStore) Delete(ctx context.Context, relPath, storedName string) {
	if err := s.backend.Remove(ctx, joinKey(relPath, storedName)); err != nil && err != ErrNotFound {
		s.logger.Warn("Failed to delete stored file",
			zap.String("path", relPath),
			zap.String("stored_name", storedName),
			zap.Error(err),
		)
		return
	}
	s.logger.Info("Deleted stored file",
		zap.String("path", relPath),
		zap.String("stored_name", storedName),
	)
}

// Extension returns the lower-cased extension of name without the dot, or ""
// when there is none.
func Extension(name string) string {
	name = strings.TrimSpace(name)
	i := strings.LastIndex(name, ".")
	if i < 0 || i == len(name)-1 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}

func joinKey(relPath, storedName string) string {
	if relPath != "" && !strings.HasSuffix(relPath, "/") {
		relPath += "/"
	}
	return relPath + storedName
}
