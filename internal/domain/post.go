package domain

import "github.com/google/uuid"

// PostCategory classifies a post on the community board
type PostCategory string

const (
	CategoryNotice PostCategory = "NOTICE"
	CategoryFree   PostCategory = "FREE"
	CategoryQnA    PostCategory = "QNA"
	CategoryReview PostCategory = "REVIEW"
)

// ContentStatus is the soft-delete status shared by posts and comments.
// The only transition is ACTIVE -> DELETED; deleted rows are retained but
// excluded from normal reads.
type ContentStatus string

const (
	StatusActive  ContentStatus = "ACTIVE"
	StatusDeleted ContentStatus = "DELETED"
)

// Post represents a board post authored by a member
type Post struct {
	BaseModel
	Title     string        `gorm:"type:varchar(200);not null" json:"title"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Category  PostCategory  `gorm:"type:varchar(20);not null;default:'FREE';index:idx_posts_category" json:"category"`
	AuthorID  uuid.UUID     `gorm:"type:uuid;not null;index:idx_posts_author_id" json:"author_id"`
	Status    ContentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_posts_status" json:"status"`
	ViewCount int64         `gorm:"not null;default:0" json:"view_count"`
	LikeCount int64         `gorm:"not null;default:0" json:"like_count"`
	Author    Member        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	// Attachments are owned rows looked up by post id, never kept in sync as
	// a mutable back-pointer
	Attachments []Attachment `gorm:"-" json:"attachments,omitempty"`
}

// TableName specifies the table name for Post
func (Post) TableName() string {
	return "posts"
}

// Delete flips the post to DELETED. There is no undelete path.
func (p *Post) Delete() {
	p.Status = StatusDeleted
}

// IsValidCategory reports whether c is one of the known post categories
func IsValidCategory(c PostCategory) bool {
	switch c {
	case CategoryNotice, CategoryFree, CategoryQnA, CategoryReview:
		return true
	}
	return false
}
