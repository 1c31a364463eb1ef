package main

import (
	"context"
	"log"
	"os"

	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/database"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/utils"
)

// seed creates the first admin account; posts can only be written by admins.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Fatal("Missing environment variables: ADMIN_USERNAME, ADMIN_EMAIL, ADMIN_PASSWORD")
	}
	if err := utils.ValidateUsername(adminUsername); err != nil {
		log.Fatalf("Invalid ADMIN_USERNAME: %v", err)
	}
	if err := utils.ValidatePassword(adminPassword); err != nil {
		log.Fatalf("Invalid ADMIN_PASSWORD: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	existing, err := users.GetByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("Failed to look up admin: %v", err)
	}
	if existing != nil {
		if !existing.IsAdmin {
			if _, err := users.UpdateFields(ctx, existing.ID, map[string]interface{}{"is_admin": true}); err != nil {
				log.Fatalf("Failed to promote user: %v", err)
			}
			log.Println("Promoted existing user to admin:", existing.Username)
			return
		}
		log.Println("Admin user already exists:", existing.Username)
		return
	}

	passwordHash, err := utils.HashPassword(adminPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	admin := &models.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		IsAdmin:      true,
	}
	if err := users.Create(ctx, admin); err != nil {
		log.Fatal("Failed to create admin:", err)
	}

	total, _ := users.Count(ctx)
	log.Println("Admin user created successfully!")
	log.Println("   Username:", admin.Username)
	log.Println("   Email:", admin.Email)
	log.Println("   Users in store:", total)
}
