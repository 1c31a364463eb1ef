package testutil

import (
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDatabase holds a test database connection (in-memory SQLite)
type TestDatabase struct {
	DB  *gorm.DB
	DSN string
}

// TestRedis is a miniredis server plus a client connected to it
type TestRedis struct {
	Server *miniredis.Miniredis
	Client *redis.Client
}

// SetupTestDatabase creates a private in-memory SQLite database with the real
// schema. Each call gets its own named database so tests never share rows.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	dsn := database.SQLiteDSN(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get underlying DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return &TestDatabase{
		DB:  db,
		DSN: dsn,
	}
}

// Teardown cleans up the test database (closes connection)
func (td *TestDatabase) Teardown(t *testing.T) {
	sqlDB, err := td.DB.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close database: %v", err)
	}
}

// SetupTestRedis creates an in-memory Redis mock (miniredis)
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	server, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	return &TestRedis{
		Server: server,
		Client: redis.NewClient(&redis.Options{Addr: server.Addr()}),
	}
}

func (tr *TestRedis) Teardown(t *testing.T) {
	if err := tr.Client.Close(); err != nil {
		t.Logf("Warning: Failed to close redis client: %v", err)
	}
	tr.Server.Close()
}

// CleanDatabase deletes all rows, children first (SQLite has no TRUNCATE)
func CleanDatabase(t *testing.T, db *gorm.DB) {
	tables := []string{"comment_likes", "comments", "posts", "users"}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			t.Logf("Warning: Failed to clean table %s: %v", table, err)
		}
	}
}
