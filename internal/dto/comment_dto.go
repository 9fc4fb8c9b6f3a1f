package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateCommentRequest carries the content of a new comment
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// UpdateCommentRequest carries the new content of a comment
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,max=1000"`
}

// CommentResponse is the view of one comment
type CommentResponse struct {
	ID         uuid.UUID `json:"id"`
	PostID     uuid.UUID `json:"post_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	LikeCount  int64     `json:"like_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
