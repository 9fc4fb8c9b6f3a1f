// Package dto defines the request and response shapes of the API.
package dto

import (
	"time"

	"github.com/google/uuid"

	"library-board-api/internal/domain"
	"library-board-api/internal/pagination"
)

// CreatePostRequest carries the text fields of a new post. Uploads travel
// separately as multipart file parts.
type CreatePostRequest struct {
	Title    string              `form:"title" binding:"required,max=200"`
	Content  string              `form:"content" binding:"required"`
	Category domain.PostCategory `form:"category"`
}

// UpdatePostRequest carries the mutable fields of a post. Nil pointers leave
// the field untouched; DeleteFileIDs name attachments to remove. The ids
// arrive as form values, so they stay strings until the service parses them.
type UpdatePostRequest struct {
	Title         *string              `form:"title"`
	Content       *string              `form:"content"`
	Category      *domain.PostCategory `form:"category"`
	DeleteFileIDs []string             `form:"delete_file_ids"`
}

// AttachmentResponse is the metadata view of one stored attachment
type AttachmentResponse struct {
	ID            uuid.UUID `json:"id"`
	OriginalName  string    `json:"original_name"`
	FileSize      int64     `json:"file_size"`
	Extension     string    `json:"extension"`
	MimeType      string    `json:"mime_type"`
	DownloadCount int64     `json:"download_count"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// PostResponse is the detail view of a post
type PostResponse struct {
	ID           uuid.UUID            `json:"id"`
	Title        string               `json:"title"`
	Content      string               `json:"content"`
	Category     domain.PostCategory  `json:"category"`
	AuthorName   string               `json:"author_name"`
	AuthorEmail  string               `json:"author_email"`
	ViewCount    int64                `json:"view_count"`
	LikeCount    int64                `json:"like_count"`
	CommentCount int64                `json:"comment_count"`
	Attachments  []AttachmentResponse `json:"attachments"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// PostListItem is the row shape of the post listing
type PostListItem struct {
	ID         uuid.UUID           `json:"id"`
	Title      string              `json:"title"`
	Category   domain.PostCategory `json:"category"`
	AuthorName string              `json:"author_name"`
	ViewCount  int64               `json:"view_count"`
	LikeCount  int64               `json:"like_count"`
	CreatedAt  time.Time           `json:"created_at"`
}

// PostListResponse is one page of posts plus the pager window
type PostListResponse struct {
	Items  []PostListItem    `json:"items"`
	Window pagination.Window `json:"window"`
}

// CreatePostResponse returns the identifier of a newly created post
type CreatePostResponse struct {
	ID uuid.UUID `json:"id"`
}
