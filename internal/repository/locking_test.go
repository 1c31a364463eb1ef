package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// On PostgreSQL the toggle must take a row lock before touching the like-set.
func TestToggleLike_LocksCommentRowOnPostgres(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "comments" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	repo := repository.NewCommentRepository(db)
	_, err = repo.ToggleLike(context.Background(), uuid.New(), uuid.New())

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
