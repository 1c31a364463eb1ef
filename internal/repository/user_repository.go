package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"gorm.io/gorm"
)

var userSortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"username":   true,
	"email":      true,
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetByEmail returns nil, nil when no user has the email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// GetByUsername returns nil, nil when no user has the username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.findOne(ctx, "id = ?", id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateFields applies a partial update and returns the stored row.
func (r *UserRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&models.User{ID: id}).Updates(fields)
		if result.Error != nil {
			return nil, translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the user together with everything they authored: their posts,
// every comment on those posts, their own comments and their likes. Comments the
// user had liked get their counters recomputed.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").Where("id = ?", id).First(&user).Error; err != nil {
			return translate(err)
		}

		var liked []uuid.UUID
		err := tx.Model(&models.CommentLike{}).Where("user_id = ?", id).Pluck("comment_id", &liked).Error
		if err != nil {
			return err
		}

		ownPosts := func() *gorm.DB {
			return tx.Model(&models.Post{}).Select("id").Where("user_id = ?", id)
		}
		doomedComments := func() *gorm.DB {
			return tx.Model(&models.Comment{}).Select("id").
				Where("user_id = ? OR post_id IN (?)", id, ownPosts())
		}

		err = tx.Where("user_id = ? OR comment_id IN (?)", id, doomedComments()).
			Delete(&models.CommentLike{}).Error
		if err != nil {
			return err
		}
		err = tx.Where("user_id = ? OR post_id IN (?)", id, ownPosts()).
			Delete(&models.Comment{}).Error
		if err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Post{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&models.User{}).Error; err != nil {
			return err
		}

		return resyncLikeCounts(tx, liked)
	})
}

// List returns one page of users; the password hash never leaves the model.
func (r *UserRepository) List(ctx context.Context, params ListParams) (Page[models.User], error) {
	return listPage[models.User](r.db.WithContext(ctx), noFilter, params, userSortable, time.Now())
}

// Count is used by the seed command to decide whether to create the first admin.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}
