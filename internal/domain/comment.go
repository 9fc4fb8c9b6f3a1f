package domain

import "github.com/google/uuid"

// Comment represents a comment on a post
type Comment struct {
	BaseModel
	PostID    uuid.UUID     `gorm:"type:uuid;not null;index:idx_comments_post_id" json:"post_id"`
	AuthorID  uuid.UUID     `gorm:"type:uuid;not null;index:idx_comments_author_id" json:"author_id"`
	Content   string        `gorm:"type:varchar(1000);not null" json:"content"`
	Status    ContentStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index:idx_comments_status" json:"status"`
	LikeCount int64         `gorm:"not null;default:0" json:"like_count"`
	Author    Member        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// TableName specifies the table name for Comment
func (Comment) TableName() string {
	return "comments"
}

// Delete flips the comment to DELETED
func (c *Comment) Delete() {
	c.Status = StatusDeleted
}
