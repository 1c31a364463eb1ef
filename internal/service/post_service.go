package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/utils"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

const postConflictMessage = "A post with this title already exists"

type PostService struct {
	postRepo *repository.PostRepository
}

func NewPostService(postRepo *repository.PostRepository) *PostService {
	return &PostService{postRepo: postRepo}
}

type CreatePostInput struct {
	Title       string
	Content     string
	Category    string
	Image       string
	ContentType string
}

// UpdatePostInput is a partial update; ContentType applies to Content.
type UpdatePostInput struct {
	Title       *string
	Content     *string
	Category    *string
	Image       *string
	ContentType string
}

func (s *PostService) Create(ctx context.Context, caller Caller, in CreatePostInput) (*models.Post, error) {
	start := time.Now()

	if !caller.IsAdmin {
		logger.Log.Warn("Post creation denied", zap.String("caller_id", caller.ID.String()))
		return nil, apperr.Forbidden("You are not allowed to create a post")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("Please provide all required fields")
	}

	slug, err := s.slugFor(title)
	if err != nil {
		return nil, err
	}

	content, err := utils.SanitizePostContent(in.Content, in.ContentType)
	if err != nil {
		logger.Log.Warn("Failed to render post content", zap.Error(err))
		return nil, apperr.Validation("Invalid post content")
	}

	if err := s.ensureUnique(ctx, title, slug, uuid.Nil); err != nil {
		return nil, err
	}

	post := &models.Post{
		UserID:   caller.ID,
		Title:    title,
		Content:  content,
		Category: strings.TrimSpace(in.Category),
		Image:    strings.TrimSpace(in.Image),
		Slug:     slug,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		logger.Log.Error("Failed to create post",
			zap.String("title", title),
			zap.Error(err),
		)
		return nil, storeError(err, "User not found", postConflictMessage)
	}

	logger.Log.Info("Post created",
		zap.String("post_id", post.ID.String()),
		zap.String("slug", post.Slug),
		zap.Duration("duration", time.Since(start)),
	)
	return post, nil
}

func (s *PostService) Update(ctx context.Context, caller Caller, postID uuid.UUID, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, storeError(err, "Post not found", "")
	}

	if !CanMutate(caller.ID, caller.IsAdmin, post.UserID) {
		logger.Log.Warn("Post update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("post_id", postID.String()),
		)
		return nil, apperr.Forbidden("You are not allowed to update this post")
	}

	fields := make(map[string]interface{})

	if present(in.Title) {
		title := strings.TrimSpace(*in.Title)
		if title != post.Title {
			slug, err := s.slugFor(title)
			if err != nil {
				return nil, err
			}
			if err := s.ensureUnique(ctx, title, slug, post.ID); err != nil {
				return nil, err
			}
			fields["title"] = title
			fields["slug"] = slug
		}
	}

	if present(in.Content) {
		content, err := utils.SanitizePostContent(*in.Content, in.ContentType)
		if err != nil {
			return nil, apperr.Validation("Invalid post content")
		}
		fields["content"] = content
	}

	if present(in.Category) {
		fields["category"] = strings.TrimSpace(*in.Category)
	}
	if present(in.Image) {
		fields["image"] = strings.TrimSpace(*in.Image)
	}

	updated, err := s.postRepo.UpdateFields(ctx, post.ID, fields)
	if err != nil {
		logger.Log.Error("Failed to update post",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, storeError(err, "Post not found", postConflictMessage)
	}

	logger.Log.Info("Post updated",
		zap.String("post_id", updated.ID.String()),
		zap.String("updated_by", caller.ID.String()),
	)
	return updated, nil
}

func (s *PostService) Delete(ctx context.Context, caller Caller, postID uuid.UUID) error {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return storeError(err, "Post not found", "")
	}

	if !CanMutate(caller.ID, caller.IsAdmin, post.UserID) {
		logger.Log.Warn("Post deletion denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("post_id", postID.String()),
		)
		return apperr.Forbidden("You are not allowed to delete this post")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Log.Error("Failed to delete post",
				zap.String("post_id", postID.String()),
				zap.Error(err),
			)
		}
		return storeError(err, "Post not found", "")
	}

	logger.Log.Info("Post deleted",
		zap.String("post_id", postID.String()),
		zap.String("deleted_by", caller.ID.String()),
	)
	return nil
}

func (s *PostService) List(ctx context.Context, filter repository.PostFilter, params repository.ListParams) (repository.Page[models.Post], error) {
	page, err := s.postRepo.List(ctx, filter, params)
	if err != nil {
		logger.Log.Error("Failed to list posts", zap.Error(err))
		return page, apperr.Internal(err)
	}
	return page, nil
}

func (s *PostService) slugFor(title string) (string, error) {
	slug := utils.Slugify(title)
	if strings.Trim(slug, "-") == "" {
		return "", apperr.Validation("Title must contain letters or numbers")
	}
	return slug, nil
}

func (s *PostService) ensureUnique(ctx context.Context, title, slug string, self uuid.UUID) error {
	existing, err := s.postRepo.FindConflicting(ctx, title, slug, self)
	if err != nil {
		return apperr.Internal(err)
	}
	if existing != nil {
		logger.Log.Warn("Post title or slug already taken",
			zap.String("title", title),
			zap.String("slug", slug),
		)
		return apperr.Conflict(postConflictMessage)
	}
	return nil
}
