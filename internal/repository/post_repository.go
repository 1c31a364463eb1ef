package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"gorm.io/gorm"
)

var postSortable = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"category":   true,
}

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	UserID     *uuid.UUID
	PostID     *uuid.UUID
	Category   string
	Slug       string
	SearchTerm string
}

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (f PostFilter) apply(db *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		db = db.Where("user_id = ?", *f.UserID)
	}
	if f.PostID != nil {
		db = db.Where("id = ?", *f.PostID)
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.Slug != "" {
		db = db.Where("slug = ?", f.Slug)
	}
	if f.SearchTerm != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(f.SearchTerm)) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	return db
}

type PostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) *PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	return translate(r.db.WithContext(ctx).Create(post).Error)
}

func (r *PostRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, translate(err)
	}
	return &post, nil
}

// FindConflicting returns a post other than exclude that already uses the title
// or the slug, or nil.
func (r *PostRepository) FindConflicting(ctx context.Context, title, slug string, exclude uuid.UUID) (*models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("(title = ? OR slug = ?) AND id <> ?", title, slug, exclude).
		Limit(1).
		Find(&posts).Error
	if err != nil || len(posts) == 0 {
		return nil, err
	}
	return &posts[0], nil
}

func (r *PostRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Post, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&models.Post{ID: id}).Updates(fields)
		if result.Error != nil {
			return nil, translate(result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes the post, its comments and their likes in one transaction.
func (r *PostRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Select("id").Where("id = ?", id).First(&post).Error; err != nil {
			return translate(err)
		}

		comments := tx.Model(&models.Comment{}).Select("id").Where("post_id = ?", id)
		if err := tx.Where("comment_id IN (?)", comments).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Post{}).Error
	})
}

func (r *PostRepository) List(ctx context.Context, filter PostFilter, params ListParams) (Page[models.Post], error) {
	return listPage[models.Post](r.db.WithContext(ctx), filter.apply, params, postSortable, time.Now())
}
