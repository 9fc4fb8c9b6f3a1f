package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"library-board-api/internal/domain"
	"library-board-api/internal/repository"
	"library-board-api/internal/storage"
)

// newTestDB opens an in-memory SQLite database for transaction plumbing
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Member{}, &domain.Post{}, &domain.Comment{}, &domain.Attachment{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// newTestStore builds a FileStore over a throwaway directory
func newTestStore(t *testing.T) *storage.FileStore {
	t.Helper()
	backend, err := storage.NewFSBackend(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create test backend: %v", err)
	}
	return storage.NewFileStore(backend, 10*1024*1024, []string{"pdf", "jpg", "png", "txt"}, zap.NewNop())
}

// MockPostRepository is a mock implementation of PostRepository
type MockPostRepository struct {
	CreateFunc             func(ctx context.Context, post *domain.Post) error
	FindByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	FindActiveByIDFunc     func(ctx context.Context, id uuid.UUID) (*domain.Post, error)
	FindActiveByIDsFunc    func(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error)
	FindActivePagedFunc    func(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error)
	SaveFunc               func(ctx context.Context, post *domain.Post) error
	IncrementViewCountFunc func(ctx context.Context, id uuid.UUID) error
	FindDeletedBeforeFunc  func(ctx context.Context, cutoff time.Time) ([]*domain.Post, error)
}

func (m *MockPostRepository) Create(ctx context.Context, post *domain.Post) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	return nil
}

func (m *MockPostRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPostRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	if m.FindActiveByIDFunc != nil {
		return m.FindActiveByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPostRepository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.Post, error) {
	if m.FindActiveByIDsFunc != nil {
		return m.FindActiveByIDsFunc(ctx, ids)
	}
	return nil, nil
}

func (m *MockPostRepository) FindActivePaged(ctx context.Context, offset, limit int) ([]*domain.Post, int64, error) {
	if m.FindActivePagedFunc != nil {
		return m.FindActivePagedFunc(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *MockPostRepository) Save(ctx context.Context, post *domain.Post) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, post)
	}
	return nil
}

func (m *MockPostRepository) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	if m.IncrementViewCountFunc != nil {
		return m.IncrementViewCountFunc(ctx, id)
	}
	return nil
}

func (m *MockPostRepository) FindDeletedBefore(ctx context.Context, cutoff time.Time) ([]*domain.Post, error) {
	if m.FindDeletedBeforeFunc != nil {
		return m.FindDeletedBeforeFunc(ctx, cutoff)
	}
	return nil, nil
}

func (m *MockPostRepository) WithTx(tx *gorm.DB) repository.PostRepository {
	return m
}

// MockCommentRepository is a mock implementation of CommentRepository
type MockCommentRepository struct {
	CreateFunc              func(ctx context.Context, comment *domain.Comment) error
	FindByIDFunc            func(ctx context.Context, id uuid.UUID) (*domain.Comment, error)
	FindActiveByPostIDFunc  func(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error)
	CountActiveByPostIDFunc func(ctx context.Context, postID uuid.UUID) (int64, error)
	SaveFunc                func(ctx context.Context, comment *domain.Comment) error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	return nil
}

func (m *MockCommentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Comment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCommentRepository) FindActiveByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Comment, error) {
	if m.FindActiveByPostIDFunc != nil {
		return m.FindActiveByPostIDFunc(ctx, postID)
	}
	return nil, nil
}

func (m *MockCommentRepository) CountActiveByPostID(ctx context.Context, postID uuid.UUID) (int64, error) {
	if m.CountActiveByPostIDFunc != nil {
		return m.CountActiveByPostIDFunc(ctx, postID)
	}
	return 0, nil
}

func (m *MockCommentRepository) Save(ctx context.Context, comment *domain.Comment) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, comment)
	}
	return nil
}

func (m *MockCommentRepository) WithTx(tx *gorm.DB) repository.CommentRepository {
	return m
}

// MockAttachmentRepository is a mock implementation of AttachmentRepository
type MockAttachmentRepository struct {
	CreateFunc                 func(ctx context.Context, attachment *domain.Attachment) error
	FindByIDFunc               func(ctx context.Context, id uuid.UUID) (*domain.Attachment, error)
	FindByPostIDFunc           func(ctx context.Context, postID uuid.UUID) ([]*domain.Attachment, error)
	DeleteFunc                 func(ctx context.Context, id uuid.UUID) error
	DeleteBatchFunc            func(ctx context.Context, ids []uuid.UUID) error
	IncrementDownloadCountFunc func(ctx context.Context, id uuid.UUID) error
}

func (m *MockAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, attachment)
	}
	return nil
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Attachment, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) FindByPostID(ctx context.Context, postID uuid.UUID) ([]*domain.Attachment, error) {
	if m.FindByPostIDFunc != nil {
		return m.FindByPostIDFunc(ctx, postID)
	}
	return nil, nil
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if m.DeleteBatchFunc != nil {
		return m.DeleteBatchFunc(ctx, ids)
	}
	return nil
}

func (m *MockAttachmentRepository) IncrementDownloadCount(ctx context.Context, id uuid.UUID) error {
	if m.IncrementDownloadCountFunc != nil {
		return m.IncrementDownloadCountFunc(ctx, id)
	}
	return nil
}

func (m *MockAttachmentRepository) WithTx(tx *gorm.DB) repository.AttachmentRepository {
	return m
}

// MockMemberRepository is a mock implementation of MemberRepository
type MockMemberRepository struct {
	CreateFunc        func(ctx context.Context, member *domain.Member) error
	FindByIDFunc      func(ctx context.Context, id uuid.UUID) (*domain.Member, error)
	FindByEmailFunc   func(ctx context.Context, email string) (*domain.Member, error)
	ExistsByEmailFunc func(ctx context.Context, email string) (bool, error)
}

func (m *MockMemberRepository) Create(ctx context.Context, member *domain.Member) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, member)
	}
	return nil
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMemberRepository) FindByEmail(ctx context.Context, email string) (*domain.Member, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockMemberRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

// MockViewRanker is a mock implementation of ViewRanker
type MockViewRanker struct {
	BumpFunc   func(ctx context.Context, postID uuid.UUID)
	TopNFunc   func(ctx context.Context, n int) ([]uuid.UUID, error)
	RemoveFunc func(ctx context.Context, postID uuid.UUID)
}

func (m *MockViewRanker) Bump(ctx context.Context, postID uuid.UUID) {
	if m.BumpFunc != nil {
		m.BumpFunc(ctx, postID)
	}
}

func (m *MockViewRanker) TopN(ctx context.Context, n int) ([]uuid.UUID, error) {
	if m.TopNFunc != nil {
		return m.TopNFunc(ctx, n)
	}
	return nil, nil
}

func (m *MockViewRanker) Remove(ctx context.Context, postID uuid.UUID) {
	if m.RemoveFunc != nil {
		m.RemoveFunc(ctx, postID)
	}
}
