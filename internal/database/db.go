package database

import (
	"strings"
	"time"

	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the store named by cfg.DatabaseURL. postgres:// URLs and
// key=value DSNs go to PostgreSQL, everything else is treated as a SQLite path.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	dialector := Dialector(cfg.DatabaseURL)

	logLevel := gormlogger.Warn
	if !cfg.IsProduction() {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if dialector.Name() == "sqlite" {
		// One writer at a time keeps the like toggle and cascades serialised
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(25)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	logger.Log.Info("Database connected",
		zap.String("dialect", dialector.Name()),
	)

	return db, nil
}

// Dialector picks the gorm driver for a DATABASE_URL value.
func Dialector(databaseURL string) gorm.Dialector {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"),
		strings.HasPrefix(databaseURL, "postgresql://"),
		strings.Contains(databaseURL, "host="):
		return postgres.Open(databaseURL)
	default:
		return sqlite.Open(SQLiteDSN(strings.TrimPrefix(databaseURL, "sqlite://")))
	}
}

// SQLiteDSN enables foreign keys so ON DELETE CASCADE is enforced.
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if strings.Contains(path, "_foreign_keys=") || strings.Contains(path, "_fk=") {
		return path
	}
	return path + sep + "_foreign_keys=on"
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.CommentLike{},
	)
	if err != nil {
		return err
	}

	logger.Log.Info("Database migration completed")
	return nil
}
