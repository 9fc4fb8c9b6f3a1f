package domain

// Member represents an account that authors posts and comments. Ownership
// checks compare the authenticated principal's e-mail against Author.Email
// with a case-sensitive exact match.
type Member struct {
	BaseModel
	Email string `gorm:"type:varchar(255);not null;uniqueIndex:uq_members_email" json:"email"`
	Name  string `gorm:"type:varchar(100);not null" json:"name"`
}

// TableName specifies the table name for Member
func (Member) TableName() string {
	return "members"
}
