package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/utils"
	"gorm.io/gorm"
)

const TestJWTSecret = "test-secret-key-for-integration-tests"

// CreateTestUser inserts a user with a hashed password
func CreateTestUser(t *testing.T, db *gorm.DB, username, email, password string, isAdmin bool) *models.User {
	t.Helper()

	hashedPassword, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsAdmin:      isAdmin,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// DefaultTestUser inserts a regular user
func DefaultTestUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "testuser1", "test@example.com", "Test123456", false)
}

// DefaultAdminUser inserts an admin
func DefaultAdminUser(t *testing.T, db *gorm.DB) *models.User {
	return CreateTestUser(t, db, "adminuser", "admin@example.com", "Admin123456", true)
}

// CreateTestPost inserts a post; the slug is derived from the title
func CreateTestPost(t *testing.T, db *gorm.DB, userID uuid.UUID, title, content, category string) *models.Post {
	t.Helper()

	post := &models.Post{
		UserID:   userID,
		Title:    title,
		Content:  content,
		Category: category,
		Slug:     utils.Slugify(title),
	}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post %q: %v", title, err)
	}
	return post
}

func CreateTestComment(t *testing.T, db *gorm.DB, postID, userID uuid.UUID, content string) *models.Comment {
	t.Helper()

	comment := &models.Comment{
		PostID:  postID,
		UserID:  userID,
		Content: content,
	}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}

// Backdate moves a row's created_at into the past
func Backdate(t *testing.T, db *gorm.DB, model interface{}, id uuid.UUID, age time.Duration) {
	t.Helper()

	err := db.Model(model).Where("id = ?", id).UpdateColumn("created_at", time.Now().Add(-age)).Error
	if err != nil {
		t.Fatalf("Failed to backdate row: %v", err)
	}
}
