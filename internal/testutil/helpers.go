package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/utils"
)

// ParseUUID parses a UUID string and fails the test if invalid
func ParseUUID(t *testing.T, uuidStr string) uuid.UUID {
	id, err := uuid.Parse(uuidStr)
	if err != nil {
		t.Fatalf("Invalid UUID string: %s, error: %v", uuidStr, err)
	}
	return id
}

// TokenFor signs a bearer token for user with TestJWTSecret
func TokenFor(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := utils.GenerateToken(user.ID, user.IsAdmin, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header value for user
func AuthHeader(t *testing.T, user *models.User) string {
	return "Bearer " + TokenFor(t, user)
}
