package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"library-board-api/internal/domain"
)

// MemberRepository defines the interface for member lookups. E-mail matching
// is exact and case-sensitive.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	FindByEmail(ctx context.Context, email string) (*domain.Member, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// memberRepositoryImpl is the GORM implementation of MemberRepository
type memberRepositoryImpl struct {
	db *gorm.DB
}

// NewMemberRepository creates a new instance of MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepositoryImpl{db: db}
}

// Create inserts a new member
func (r *memberRepositoryImpl) Create(ctx context.Context, member *domain.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// FindByID finds a member by ID
func (r *memberRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// FindByEmail finds a member by exact e-mail
func (r *memberRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	var member domain.Member
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ExistsByEmail reports whether a member with the exact e-mail exists
func (r *memberRepositoryImpl) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.Member{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
