package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var commentSortable = map[string]bool{
	"created_at":      true,
	"updated_at":      true,
	"number_of_likes": true,
}

// likeCount recomputes a comment's counter from its like-set.
var likeCount = gorm.Expr("(SELECT COUNT(*) FROM comment_likes WHERE comment_likes.comment_id = comments.id)")

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return translate(err)
	}
	comment.Likes = []uuid.UUID{}
	return nil
}

func (r *CommentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return getComment(r.db.WithContext(ctx), id)
}

// ListByPost returns every comment on a post, newest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	db := r.db.WithContext(ctx)

	comments := make([]models.Comment, 0)
	err := db.Where("post_id = ?", postID).
		Order("created_at DESC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	if err := loadLikes(db, comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string) (*models.Comment, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&models.Comment{ID: id}).Update("content", content)
	if result.Error != nil {
		return nil, translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return getComment(db, id)
}

func (r *CommentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Comment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ToggleLike adds userID to the comment's like-set, or removes it when already
// present, and stores the new set size as the counter. The comment row is locked
// for the whole read-modify-write so concurrent toggles cannot lose updates.
func (r *CommentRepository) ToggleLike(ctx context.Context, commentID, userID uuid.UUID) (*models.Comment, error) {
	var comment *models.Comment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked models.Comment
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", commentID).
			First(&locked).Error
		if err != nil {
			return translate(err)
		}

		removed := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
		if removed.Error != nil {
			return removed.Error
		}
		if removed.RowsAffected == 0 {
			like := models.CommentLike{CommentID: commentID, UserID: userID}
			if err := tx.Create(&like).Error; err != nil {
				return translate(err)
			}
		}

		err = tx.Model(&models.Comment{}).
			Where("id = ?", commentID).
			Updates(map[string]interface{}{"number_of_likes": likeCount}).Error
		if err != nil {
			return err
		}

		comment, err = getComment(tx, commentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return comment, nil
}

// List returns one page of all comments for the moderation view.
func (r *CommentRepository) List(ctx context.Context, params ListParams) (Page[models.Comment], error) {
	db := r.db.WithContext(ctx)

	page, err := listPage[models.Comment](db, noFilter, params, commentSortable, time.Now())
	if err != nil {
		return page, err
	}
	if err := loadLikes(db, page.Items); err != nil {
		return page, err
	}
	return page, nil
}

func getComment(db *gorm.DB, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := db.Where("id = ?", id).First(&comment).Error; err != nil {
		return nil, translate(err)
	}

	comments := []models.Comment{comment}
	if err := loadLikes(db, comments); err != nil {
		return nil, err
	}
	return &comments[0], nil
}

// loadLikes fills Likes on each comment in like order.
func loadLikes(db *gorm.DB, comments []models.Comment) error {
	if len(comments) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(comments))
	index := make(map[uuid.UUID]int, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
		index[comments[i].ID] = i
		comments[i].Likes = []uuid.UUID{}
	}

	var likes []models.CommentLike
	err := db.Where("comment_id IN ?", ids).
		Order("created_at ASC").
		Order("user_id ASC").
		Find(&likes).Error
	if err != nil {
		return err
	}

	for _, like := range likes {
		i := index[like.CommentID]
		comments[i].Likes = append(comments[i].Likes, like.UserID)
	}
	return nil
}

func resyncLikeCounts(tx *gorm.DB, commentIDs []uuid.UUID) error {
	if len(commentIDs) == 0 {
		return nil
	}
	return tx.Model(&models.Comment{}).
		Where("id IN ?", commentIDs).
		UpdateColumn("number_of_likes", likeCount).Error
}
