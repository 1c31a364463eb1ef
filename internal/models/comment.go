package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Comment struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	PostID        uuid.UUID `gorm:"type:uuid;not null;index" json:"postId"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	NumberOfLikes int       `gorm:"not null;default:0" json:"numberOfLikes"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	// Filled from comment_likes by the repository
	Likes []uuid.UUID `gorm:"-" json:"likes"`

	Post Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CommentLike is one member of a comment's like-set.
type CommentLike struct {
	CommentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time

	Comment Comment `gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// HasLike reports whether userID is in the like-set.
func (c *Comment) HasLike(userID uuid.UUID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}
