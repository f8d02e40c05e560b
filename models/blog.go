package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog represents a blog post owned by exactly one user
type Blog struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Title     string    `json:"title" db:"title" gorm:"type:text;not null"`
	Content   string    `json:"content" db:"content" gorm:"type:text;not null"`
	ImageURL  *string   `json:"imageUrl" db:"image_url" gorm:"column:image_url;type:text"`
	UserID    uuid.UUID `json:"userID" db:"user_id" gorm:"type:uuid;not null;index:idx_blogs_user_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP;index:idx_blogs_created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"type:timestamptz;not null;default:CURRENT_TIMESTAMP"`
}

// BlogPatch carries a partial update; nil fields are left untouched.
type BlogPatch struct {
	Title    *string
	Content  *string
	ImageURL *string
}

// Empty reports whether the patch changes nothing.
func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.ImageURL == nil
}
