package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
)

// AttachmentRepository defines the interface for attachment metadata access.
// Rows are created only by the store path and removed only after the physical
// delete was attempted.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	FindByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Attachment, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
	IncrementDownloadCount(ctx context.Context, id uuid.UUID) error
	WithTx(tx *gorm.DB) AttachmentRepository
}

// attachmentRepositoryImpl is the GORM implementation of AttachmentRepository
type attachmentRepositoryImpl struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new instance of AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *attachmentRepositoryImpl) WithTx(tx *gorm.DB) AttachmentRepository {
	return &attachmentRepositoryImpl{db: tx}
}

// Create inserts a new attachment metadata row
func (r *attachmentRepositoryImpl) Create(ctx context.Context, attachment *domain.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindByID finds an attachment by its ID
func (r *attachmentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	var attachment domain.Attachment
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// FindByPostID returns the attachments of a post ordered by creation time
func (r *attachmentRepositoryImpl) FindByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Attachment, error) {
	var attachments []*domain.Attachment
	if err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes an attachment metadata row
func (r *attachmentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Attachment{}, "id = ?", id).Error
}

// DeleteBatch removes multiple attachment metadata rows
func (r *attachmentRepositoryImpl) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&domain.Attachment{}).Error
}

// IncrementDownloadCount bumps the download counter with a single UPDATE
func (r *attachmentRepositoryImpl) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Attachment{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1")).Error
}
