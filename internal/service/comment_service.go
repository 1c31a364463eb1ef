package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

type CommentService struct {
	commentRepo *repository.CommentRepository
	postRepo    *repository.PostRepository
}

func NewCommentService(commentRepo *repository.CommentRepository, postRepo *repository.PostRepository) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
	}
}

func validateCommentContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", apperr.Validation("Please provide all required fields")
	}
	return content, nil
}

// Create attaches a comment by the caller to an existing post. authorID, when
// set, must be the caller.
func (s *CommentService) Create(ctx context.Context, caller Caller, postID, authorID uuid.UUID, content string) (*models.Comment, error) {
	if authorID != uuid.Nil && authorID != caller.ID {
		logger.Log.Warn("Comment creation for another user denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("user_id", authorID.String()),
		)
		return nil, apperr.Forbidden("You are not allowed to create this comment")
	}

	content, err := validateCommentContent(content)
	if err != nil {
		return nil, err
	}
	if postID == uuid.Nil {
		return nil, apperr.Validation("Please provide all required fields")
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, storeError(err, "Post not found", "")
	}

	comment := &models.Comment{
		Content: content,
		PostID:  postID,
		UserID:  caller.ID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		logger.Log.Error("Failed to create comment",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, storeError(err, "Post not found", "")
	}

	logger.Log.Info("Comment created",
		zap.String("comment_id", comment.ID.String()),
		zap.String("post_id", postID.String()),
		zap.String("user_id", caller.ID.String()),
	)
	return comment, nil
}

func (s *CommentService) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		logger.Log.Error("Failed to list post comments",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	return comments, nil
}

// ToggleLike flips the caller's membership in the comment's like-set.
func (s *CommentService) ToggleLike(ctx context.Context, caller Caller, commentID uuid.UUID) (*models.Comment, error) {
	comment, err := s.commentRepo.ToggleLike(ctx, commentID, caller.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Log.Error("Failed to toggle like",
				zap.String("comment_id", commentID.String()),
				zap.Error(err),
			)
		}
		return nil, storeError(err, "Comment not found", "")
	}

	logger.Log.Debug("Comment like toggled",
		zap.String("comment_id", commentID.String()),
		zap.String("user_id", caller.ID.String()),
		zap.Bool("liked", comment.HasLike(caller.ID)),
		zap.Int("number_of_likes", comment.NumberOfLikes),
	)
	return comment, nil
}

func (s *CommentService) Edit(ctx context.Context, caller Caller, commentID uuid.UUID, content string) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "Comment not found", "")
	}

	if !CanMutate(caller.ID, caller.IsAdmin, comment.UserID) {
		logger.Log.Warn("Comment edit denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("comment_id", commentID.String()),
		)
		return nil, apperr.Forbidden("You are not allowed to edit this comment")
	}

	content, err = validateCommentContent(content)
	if err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.UpdateContent(ctx, commentID, content)
	if err != nil {
		logger.Log.Error("Failed to edit comment",
			zap.String("comment_id", commentID.String()),
			zap.Error(err),
		)
		return nil, storeError(err, "Comment not found", "")
	}

	logger.Log.Info("Comment edited",
		zap.String("comment_id", commentID.String()),
		zap.String("edited_by", caller.ID.String()),
	)
	return updated, nil
}

func (s *CommentService) Delete(ctx context.Context, caller Caller, commentID uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return storeError(err, "Comment not found", "")
	}

	if !CanMutate(caller.ID, caller.IsAdmin, comment.UserID) {
		logger.Log.Warn("Comment deletion denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("comment_id", commentID.String()),
		)
		return apperr.Forbidden("You are not allowed to delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return storeError(err, "Comment not found", "")
	}

	logger.Log.Info("Comment deleted",
		zap.String("comment_id", commentID.String()),
		zap.String("deleted_by", caller.ID.String()),
	)
	return nil
}

func (s *CommentService) List(ctx context.Context, params repository.ListParams) (repository.Page[models.Comment], error) {
	page, err := s.commentRepo.List(ctx, params)
	if err != nil {
		logger.Log.Error("Failed to list comments", zap.Error(err))
		return page, apperr.Internal(err)
	}
	return page, nil
}
