package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultProfilePicture = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_960_720.png"

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	PasswordHash   string    `gorm:"type:varchar(255);not null" json:"-"` // Never expose password hash in JSON
	ProfilePicture string    `gorm:"type:varchar(500);not null" json:"profilePicture"`
	IsAdmin        bool      `gorm:"not null;default:false" json:"isAdmin"`
	CreatedAt      time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.ProfilePicture == "" {
		u.ProfilePicture = DefaultProfilePicture
	}
	return nil
}
