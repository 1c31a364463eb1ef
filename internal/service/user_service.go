package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/utils"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateUserInput carries a partial profile update. Nil or empty fields are left alone.
type UpdateUserInput struct {
	Username       *string
	Email          *string
	Password       *string
	ProfilePicture *string
}

func present(s *string) bool {
	return s != nil && *s != ""
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "User not found", "")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, caller Caller, targetID uuid.UUID, in UpdateUserInput) (*models.User, error) {
	logger.Log.Debug("Processing profile update",
		zap.String("caller_id", caller.ID.String()),
		zap.String("target_id", targetID.String()),
	)

	if !CanEditProfile(caller.ID, targetID) {
		logger.Log.Warn("Profile update denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("target_id", targetID.String()),
		)
		return nil, apperr.Forbidden("You are not allowed to update this user")
	}

	fields := make(map[string]interface{})

	if present(in.Password) {
		if err := utils.ValidatePassword(*in.Password); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		hashed, err := utils.HashPassword(*in.Password)
		if err != nil {
			logger.Log.Error("Failed to hash password", zap.Error(err))
			return nil, apperr.Internal(err)
		}
		fields["password_hash"] = hashed
	}

	if present(in.Username) {
		if err := utils.ValidateUsername(*in.Username); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.ensureFree(ctx, targetID, s.userRepo.GetByUsername, *in.Username, "Username is already taken"); err != nil {
			return nil, err
		}
		fields["username"] = *in.Username
	}

	if present(in.Email) {
		if err := utils.ValidateEmail(*in.Email); err != nil {
			return nil, apperr.Validation(err.Error())
		}
		if err := s.ensureFree(ctx, targetID, s.userRepo.GetByEmail, *in.Email, "User with this email already exists"); err != nil {
			return nil, err
		}
		fields["email"] = *in.Email
	}

	if present(in.ProfilePicture) {
		fields["profile_picture"] = *in.ProfilePicture
	}

	user, err := s.userRepo.UpdateFields(ctx, targetID, fields)
	if err != nil {
		logger.Log.Error("Failed to update user",
			zap.String("user_id", targetID.String()),
			zap.Error(err),
		)
		return nil, storeError(err, "User not found", "Username or email is already taken")
	}

	logger.Log.Info("User updated",
		zap.String("user_id", user.ID.String()),
		zap.Int("fields", len(fields)),
	)
	return user, nil
}

func (s *UserService) ensureFree(
	ctx context.Context,
	self uuid.UUID,
	lookup func(context.Context, string) (*models.User, error),
	value, conflict string,
) error {
	existing, err := lookup(ctx, value)
	if err != nil {
		return apperr.Internal(err)
	}
	if existing != nil && existing.ID != self {
		return apperr.Conflict(conflict)
	}
	return nil
}

// Delete lets users remove their own account and admins remove anyone's.
func (s *UserService) Delete(ctx context.Context, caller Caller, targetID uuid.UUID) error {
	if !CanMutate(caller.ID, caller.IsAdmin, targetID) {
		logger.Log.Warn("User deletion denied",
			zap.String("caller_id", caller.ID.String()),
			zap.String("target_id", targetID.String()),
		)
		return apperr.Forbidden("You are not allowed to delete this user")
	}

	start := time.Now()
	if err := s.userRepo.Delete(ctx, targetID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Log.Error("Failed to delete user",
				zap.String("user_id", targetID.String()),
				zap.Error(err),
			)
		}
		return storeError(err, "User not found", "")
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", targetID.String()),
		zap.String("deleted_by", caller.ID.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (s *UserService) List(ctx context.Context, params repository.ListParams) (repository.Page[models.User], error) {
	page, err := s.userRepo.List(ctx, params)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return page, apperr.Internal(err)
	}
	return page, nil
}
