package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
)

// CommentRepository defines the interface for comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindActiveByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error)
	CountActiveByPostID(ctx context.Context, postID uuid.UUID) (int64, error)
	Save(ctx context.Context, comment *domain.Comment) error
	WithTx(tx *gorm.DB) CommentRepository
}

// commentRepositoryImpl is the GORM implementation of CommentRepository
type commentRepositoryImpl struct {
	db *gorm.DB
}

// NewCommentRepository creates a new instance of CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *commentRepositoryImpl) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepositoryImpl{db: tx}
}

// Create inserts a new comment
func (r *commentRepositoryImpl) Create(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// FindByID finds a comment regardless of status, with its author loaded.
// Status filtering belongs to the caller: a deleted comment is still found
// so update can distinguish ALREADY_DELETED from NOT_FOUND.
func (r *commentRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	var comment domain.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// FindActiveByPostID returns the ACTIVE comments of a post ordered by
// creation time ascending.
func (r *commentRepositoryImpl) FindActiveByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error) {
	var comments []*domain.Comment
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ? AND status = ?", postID, domain.StatusActive).
		Order("created_at ASC").
		Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// CountActiveByPostID counts the ACTIVE comments of a post
func (r *commentRepositoryImpl) CountActiveByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Comment{}).
		Where("post_id = ? AND status = ?", postID, domain.StatusActive).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists every field of the comment
func (r *commentRepositoryImpl) Save(ctx context.Context, comment *domain.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}
