package service

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
	"library-board-api/internal/metrics"
	"library-board-api/internal/repository"
	"library-board-api/internal/response"
	"library-board-api/internal/storage"
)

// Download bundles the stored bytes with the metadata a handler needs to
// serve them. Close the Content when done.
type Download struct {
	Content      io.ReadCloser
	OriginalName string
	MimeType     string
	Size         int64
}

// FileService defines the interface for attachment download logic
type FileService interface {
	DownloadAttachment(ctx context.Context, attachmentID uuid.UUID) (*Download, error)
}

// fileServiceImpl is the implementation of FileService
type fileServiceImpl struct {
	attachmentRepo repository.AttachmentRepository
	store          *storage.FileStore
	metrics        *metrics.Metrics
	logger         *zap.Logger
}

// NewFileService creates a new instance of FileService
func NewFileService(
	attachmentRepo repository.AttachmentRepository,
	store *storage.FileStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) FileService {
	return &fileServiceImpl{
		attachmentRepo: attachmentRepo,
		store:          store,
		metrics:        m,
		logger:         logger,
	}
}

// DownloadAttachment opens the stored bytes and counts the download. The
// count moves only after the file is known to be readable, so a failed open
// never inflates it.
func (s *fileServiceImpl) DownloadAttachment(ctx context.Context, attachmentID uuid.UUID) (*Download, error) {
	att, err := s.attachmentRepo.FindByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewAppError(response.ErrCodeNotFound, "Attachment not found", "")
		}
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to fetch attachment", err.Error())
	}

	rc, err := s.store.Load(ctx, att.FilePath, att.StoredName)
	if err != nil {
		var appErr *response.AppError
		if errors.As(err, &appErr) && appErr.Code == response.ErrCodeStorageIO && s.metrics != nil {
			s.metrics.IncrementStorageError()
		}
		return nil, err
	}

	if err := s.attachmentRepo.IncrementDownloadCount(ctx, attachmentID); err != nil {
		rc.Close()
		return nil, response.NewAppError(response.ErrCodeInternal, "Failed to record download", err.Error())
	}

	if s.metrics != nil {
		s.metrics.IncrementAttachmentDownload()
	}
	s.logger.Info("Attachment download started",
		zap.String("attachment_id", attachmentID.String()),
		zap.String("original_name", att.OriginalName),
		zap.Int64("size", att.FileSize),
	)

	return &Download{
		Content:      rc,
		OriginalName: att.OriginalName,
		MimeType:     downloadMimeType(att),
		Size:         att.FileSize,
	}, nil
}

// downloadMimeType falls back to a byte-stream type when the upload carried
// none
func downloadMimeType(att *domain.Attachment) string {
	if att.MimeType == "" {
		return "application/octet-stream"
	}
	return att.MimeType
}
