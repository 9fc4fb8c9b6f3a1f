// Package repository provides GORM-backed data access for the board domain.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
)

// PostRepository defines the interface for post data access. Reads filter to
// ACTIVE rows; DELETED posts are indistinguishable from absent ones.
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error)
	FindActivePaged(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error)
	Save(ctx context.Context, post *domain.Post) error
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error)
	WithTx(tx *gorm.DB) PostRepository
}

// postRepositoryImpl is the GORM implementation of PostRepository
type postRepositoryImpl struct {
	db *gorm.DB
}

// NewPostRepository creates a new instance of PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepositoryImpl{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *postRepositoryImpl) WithTx(tx *gorm.DB) PostRepository {
	return &postRepositoryImpl{db: tx}
}

// Create inserts a new post
func (r *postRepositoryImpl) Create(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// FindByID finds a post regardless of status. Used by the comment path,
// which does not cascade on post soft deletion.
func (r *postRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindActiveByID finds an ACTIVE post with its author loaded
func (r *postRepositoryImpl) FindActiveByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	var post domain.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id = ? AND status = ?", id, domain.StatusActive).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// FindActiveByIDs finds ACTIVE posts among ids, in no particular order
func (r *postRepositoryImpl) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	if len(ids) == 0 {
		return []*domain.Post{}, nil
	}
	var posts []*domain.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("id IN ? AND status = ?", ids, domain.StatusActive).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// FindActivePaged returns one page of ACTIVE posts ordered by creation time
// descending, together with the total ACTIVE count for pagination.
func (r *postRepositoryImpl) FindActivePaged(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("status = ?", domain.StatusActive).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*domain.Post
	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("status = ?", domain.StatusActive).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// Save persists every field of the post. Mutations reach storage only through
// explicit saves, never through an implicit flush.
func (r *postRepositoryImpl) Save(ctx context.Context, post *domain.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

// IncrementViewCount bumps the view counter by exactly 1 with a single UPDATE
func (r *postRepositoryImpl) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// FindDeletedBefore returns posts that were soft-deleted before cutoff,
// judged by their last update timestamp. Used by the retention purge job.
func (r *postRepositoryImpl) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error) {
	var posts []*domain.Post
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", domain.StatusDeleted, cutoff).
		Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}
