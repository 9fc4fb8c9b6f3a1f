package repository

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"library-board-api/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&domain.Member{}, &domain.Post{}, &domain.Comment{}, &domain.Attachment{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func seedMember(t *testing.T, db *gorm.DB, email string) *domain.Member {
	t.Helper()

	member := &domain.Member{Email: email, Name: "테스트 회원"}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to seed member: %v", err)
	}
	return member
}

func seedPost(t *testing.T, db *gorm.DB, authorID uuid.UUID, title string, status domain.ContentStatus, createdAt time.Time) *domain.Post {
	t.Helper()

	post := &domain.Post{
		BaseModel: domain.BaseModel{ID: uuid.New(), CreatedAt: createdAt, UpdatedAt: createdAt},
		Title:     title,
		Content:   "내용",
		Category:  domain.CategoryFree,
		AuthorID:  authorID,
		Status:    status,
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("failed to seed post: %v", err)
	}
	return post
}
