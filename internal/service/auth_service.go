package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/utils"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

const googleUsernameAttempts = 5

type AuthService struct {
	userRepo      *repository.UserRepository
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(userRepo *repository.UserRepository, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

type SignupInput struct {
	Username string
	Email    string
	Password string
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	start := time.Now()

	logger.Log.Debug("Processing user signup",
		zap.String("username", in.Username),
		zap.String("email", in.Email),
	)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, apperr.Validation("All fields are required")
	}

	if err := validateSignupInput(in); err != nil {
		logger.Log.Warn("Signup validation failed",
			zap.String("username", in.Username),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, err
	}

	existing, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to check email existence",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		logger.Log.Warn("Email already exists", zap.String("email", in.Email))
		return nil, apperr.Conflict("User with this email already exists")
	}

	existing, err = s.userRepo.GetByUsername(ctx, in.Username)
	if err != nil {
		logger.Log.Error("Failed to check username existence",
			zap.String("username", in.Username),
			zap.Error(err),
		)
		return nil, apperr.Internal(err)
	}
	if existing != nil {
		logger.Log.Warn("Username already exists", zap.String("username", in.Username))
		return nil, apperr.Conflict("Username is already taken")
	}

	hashStart := time.Now()
	hashedPassword, err := utils.HashPassword(in.Password)
	if err != nil {
		logger.Log.Error("Failed to hash password", zap.Error(err))
		return nil, apperr.Internal(err)
	}
	hashDuration := time.Since(hashStart)

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.Log.Error("Failed to create user in database",
			zap.String("username", in.Username),
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, storeError(err, "User not found", "Username or email is already taken")
	}

	logger.Log.Info("User signed up successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Duration("hash_duration", hashDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, nil
}

func (s *AuthService) Signin(ctx context.Context, email, password string) (*models.User, string, error) {
	start := time.Now()

	logger.Log.Debug("Processing user signin", zap.String("email", email))

	if email == "" || password == "" {
		return nil, "", apperr.Validation("All fields are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, "", apperr.Internal(err)
	}
	if user == nil {
		logger.Log.Warn("Signin failed: user not found", zap.String("email", email))
		return nil, "", apperr.NotFound("User not found")
	}

	verifyStart := time.Now()
	valid, err := utils.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		logger.Log.Error("Failed to verify password",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", apperr.Internal(err)
	}
	verifyDuration := time.Since(verifyStart)

	if !valid {
		logger.Log.Warn("Signin failed: invalid password",
			zap.String("user_id", user.ID.String()),
		)
		return nil, "", apperr.Validation("Invalid password")
	}

	if utils.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", apperr.Internal(err)
	}

	logger.Log.Info("User signed in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Duration("password_verify_duration", verifyDuration),
		zap.Duration("total_duration", time.Since(start)),
	)

	return user, token, nil
}

// upgradeHash replaces a legacy bcrypt hash after a successful signin. Failure
// only costs another upgrade attempt next time.
func (s *AuthService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hashed, err := utils.HashPassword(password)
	if err == nil {
		_, err = s.userRepo.UpdateFields(ctx, user.ID, map[string]interface{}{"password_hash": hashed})
	}
	if err != nil {
		logger.Log.Warn("Failed to upgrade legacy password hash",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return
	}
	user.PasswordHash = hashed
	logger.Log.Info("Upgraded legacy password hash", zap.String("user_id", user.ID.String()))
}

type GoogleInput struct {
	Email    string
	Name     string
	PhotoURL string
}

// Google signs in the account owning the email, creating it on first use with a
// generated username and an unusable random password.
func (s *AuthService) Google(ctx context.Context, in GoogleInput) (*models.User, string, error) {
	logger.Log.Debug("Processing Google signin", zap.String("email", in.Email))

	if in.Email == "" || in.Name == "" {
		return nil, "", apperr.Validation("All fields are required")
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, "", apperr.Validation(err.Error())
	}

	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		logger.Log.Error("Failed to get user by email",
			zap.String("email", in.Email),
			zap.Error(err),
		)
		return nil, "", apperr.Internal(err)
	}

	if user == nil {
		user, err = s.createGoogleUser(ctx, in)
		if err != nil {
			return nil, "", err
		}
	}

	token, err := utils.GenerateToken(user.ID, user.IsAdmin, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
		)
		return nil, "", apperr.Internal(err)
	}

	logger.Log.Info("Google signin succeeded",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
	)

	return user, token, nil
}

func (s *AuthService) createGoogleUser(ctx context.Context, in GoogleInput) (*models.User, error) {
	hashed, err := utils.HashRandomPassword()
	if err != nil {
		logger.Log.Error("Failed to hash generated password", zap.Error(err))
		return nil, apperr.Internal(err)
	}

	for attempt := 0; attempt < googleUsernameAttempts; attempt++ {
		user := &models.User{
			Username:       GoogleUsername(in.Name),
			Email:          in.Email,
			PasswordHash:   hashed,
			ProfilePicture: in.PhotoURL,
		}

		err = s.userRepo.Create(ctx, user)
		if err == nil {
			logger.Log.Info("Created user from Google signin",
				zap.String("user_id", user.ID.String()),
				zap.String("username", user.Username),
			)
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			break
		}

		// The email may have been claimed concurrently; otherwise retry with new digits
		if existing, lookupErr := s.userRepo.GetByEmail(ctx, in.Email); lookupErr == nil && existing != nil {
			return existing, nil
		}
	}

	logger.Log.Error("Failed to create user from Google signin",
		zap.String("email", in.Email),
		zap.Error(err),
	)
	return nil, storeError(err, "User not found", "Could not generate a unique username")
}

// GoogleUsername lowercases the display name, keeps letters and digits and
// appends four random digits.
func GoogleUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}

	base := b.String()
	if len(base) < 3 {
		base += "user"
	}
	if len(base) > utils.UsernameMaxLength-4 {
		base = base[:utils.UsernameMaxLength-4]
	}

	return fmt.Sprintf("%s%04d", base, rand.Intn(10000))
}

func validateSignupInput(in SignupInput) error {
	if err := utils.ValidateUsername(in.Username); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return apperr.Validation(err.Error())
	}
	if err := utils.ValidatePassword(in.Password); err != nil {
		return apperr.Validation(err.Error())
	}
	return nil
}
