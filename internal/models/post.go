package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategory  = "uncategorized"
	DefaultPostImage = "https://www.hostinger.com/tutorials/wp-content/uploads/sites/2/2021/09/how-to-write-a-blog-post.png"
)

type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title     string    `gorm:"type:varchar(200);uniqueIndex;not null" json:"title"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Category  string    `gorm:"type:varchar(50);not null;index" json:"category"`
	Image     string    `gorm:"type:varchar(500);not null" json:"image"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Foreign key only; the author is looked up explicitly when needed
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Image == "" {
		p.Image = DefaultPostImage
	}
	return nil
}
