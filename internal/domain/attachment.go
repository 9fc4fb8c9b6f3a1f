package domain

import "github.com/google/uuid"

// Attachment holds the metadata of a file stored for a post. The original
// filename is display metadata only; the stored name is the collision-free
// name the bytes live under on disk.
type Attachment struct {
	BaseModel
	PostID        uuid.UUID `gorm:"type:uuid;not null;index:idx_attachments_post_id" json:"post_id"`
	OriginalName  string    `gorm:"type:varchar(255);not null" json:"original_name"`
	StoredName    string    `gorm:"type:varchar(255);not null" json:"stored_name"`
	FilePath      string    `gorm:"type:varchar(500);not null" json:"file_path"`
	FileSize      int64     `gorm:"not null" json:"file_size"`
	Extension     string    `gorm:"type:varchar(10);not null" json:"extension"`
	MimeType      string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	DownloadCount int64     `gorm:"not null;default:0" json:"download_count"`
}

// TableName specifies the table name for Attachment
func (Attachment) TableName() string {
	return "attachments"
}
