package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/apperr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/service"
	"github.com/quillpress/blog-api/internal/testutil"
	"github.com/quillpress/blog-api/internal/utils"
	"github.com/quillpress/blog-api/pkg/logger"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

type ServiceIntegrationTestSuite struct {
	suite.Suite
	testDB   *testutil.TestDatabase
	ctx      context.Context
	auth     *service.AuthService
	users    *service.UserService
	posts    *service.PostService
	comments *service.CommentService

	admin  *models.User
	member *models.User
}

func (s *ServiceIntegrationTestSuite) SetupSuite() {
	logger.Init(false, "error")

	s.testDB = testutil.SetupTestDatabase(s.T())
	s.ctx = context.Background()

	userRepo := repository.NewUserRepository(s.testDB.DB)
	postRepo := repository.NewPostRepository(s.testDB.DB)
	commentRepo := repository.NewCommentRepository(s.testDB.DB)

	s.auth = service.NewAuthService(userRepo, testutil.TestJWTSecret, time.Hour)
	s.users = service.NewUserService(userRepo)
	s.posts = service.NewPostService(postRepo)
	s.comments = service.NewCommentService(commentRepo, postRepo)
}

func (s *ServiceIntegrationTestSuite) TearDownSuite() {
	s.testDB.Teardown(s.T())
}

func (s *ServiceIntegrationTestSuite) SetupTest() {
	testutil.CleanDatabase(s.T(), s.testDB.DB)
	s.admin = testutil.DefaultAdminUser(s.T(), s.testDB.DB)
	s.member = testutil.DefaultTestUser(s.T(), s.testDB.DB)
}

func callerOf(u *models.User) service.Caller {
	return service.Caller{ID: u.ID, IsAdmin: u.IsAdmin}
}

func (s *ServiceIntegrationTestSuite) assertKind(err error, kind apperr.Kind) {
	s.Require().Error(err)
	s.Equal(kind, apperr.KindOf(err), "unexpected error: %v", err)
}

func (s *ServiceIntegrationTestSuite) countRows(model interface{}) int64 {
	var n int64
	s.testDB.DB.Model(model).Count(&n)
	return n
}

// ==================== AUTH ====================

func (s *ServiceIntegrationTestSuite) TestSignup_UsernamePolicy() {
	user, err := s.auth.Signup(s.ctx, service.SignupInput{
		Username: "alice123",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	s.Require().NoError(err)
	s.Equal("alice123", user.Username)
	s.False(user.IsAdmin)
	s.Equal(models.DefaultProfilePicture, user.ProfilePicture)

	_, err = s.auth.Signup(s.ctx, service.SignupInput{
		Username: "Alice1",
		Email:    "alice1@example.com",
		Password: "secret1",
	})
	s.assertKind(err, apperr.KindValidation)

	_, err = s.auth.Signup(s.ctx, service.SignupInput{
		Username: "Alice1234",
		Email:    "alice2@example.com",
		Password: "secret1",
	})
	s.assertKind(err, apperr.KindValidation)
	s.Equal("Username must be lowercase", apperr.MessageOf(err))
}

func (s *ServiceIntegrationTestSuite) TestSignup_DuplicatesAreConflicts() {
	before := s.countRows(&models.User{})

	_, err := s.auth.Signup(s.ctx, service.SignupInput{
		Username: "freshname",
		Email:    s.member.Email,
		Password: "secret1",
	})
	s.assertKind(err, apperr.KindConflict)

	_, err = s.auth.Signup(s.ctx, service.SignupInput{
		Username: s.member.Username,
		Email:    "fresh@example.com",
		Password: "secret1",
	})
	s.assertKind(err, apperr.KindConflict)

	s.Equal(before, s.countRows(&models.User{}))
}

func (s *ServiceIntegrationTestSuite) TestSignup_MissingFields() {
	_, err := s.auth.Signup(s.ctx, service.SignupInput{Username: "someone1"})
	s.assertKind(err, apperr.KindValidation)
	s.Equal("All fields are required", apperr.MessageOf(err))
}

func (s *ServiceIntegrationTestSuite) TestSignin() {
	user, token, err := s.auth.Signin(s.ctx, s.member.Email, "Test123456")
	s.Require().NoError(err)
	s.Equal(s.member.ID, user.ID)

	claims, err := utils.ValidateToken(token, testutil.TestJWTSecret)
	s.Require().NoError(err)
	s.Equal(s.member.ID, claims.UserID)
	s.False(claims.IsAdmin)

	_, _, err = s.auth.Signin(s.ctx, s.member.Email, "wrong-password")
	s.assertKind(err, apperr.KindValidation)

	_, _, err = s.auth.Signin(s.ctx, "ghost@example.com", "whatever")
	s.assertKind(err, apperr.KindNotFound)
}

func (s *ServiceIntegrationTestSuite) TestSignin_UpgradesLegacyHash() {
	legacy, err := bcrypt.GenerateFromPassword([]byte("oldpassword"), bcrypt.MinCost)
	s.Require().NoError(err)
	s.Require().NoError(s.testDB.DB.Model(&models.User{}).
		Where("id = ?", s.member.ID).
		Update("password_hash", string(legacy)).Error)

	_, _, err = s.auth.Signin(s.ctx, s.member.Email, "oldpassword")
	s.Require().NoError(err)

	var stored models.User
	s.Require().NoError(s.testDB.DB.First(&stored, "id = ?", s.member.ID).Error)
	s.False(utils.NeedsRehash(stored.PasswordHash))

	_, _, err = s.auth.Signin(s.ctx, s.member.Email, "oldpassword")
	s.NoError(err, "Upgraded hash must still accept the same password")
}

func (s *ServiceIntegrationTestSuite) TestGoogle_CreatesOnceThenSignsIn() {
	in := service.GoogleInput{
		Email:    "jane@example.com",
		Name:     "Jane Doe",
		PhotoURL: "https://example.com/jane.png",
	}

	first, token, err := s.auth.Google(s.ctx, in)
	s.Require().NoError(err)
	s.NotEmpty(token)
	s.Regexp(`^janedoe[0-9]{4}$`, first.Username)
	s.Equal(in.PhotoURL, first.ProfilePicture)

	second, _, err := s.auth.Google(s.ctx, in)
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	existing, _, err := s.auth.Google(s.ctx, service.GoogleInput{Email: s.member.Email, Name: "Anyone"})
	s.Require().NoError(err)
	s.Equal(s.member.ID, existing.ID)
}

// ==================== USERS ====================

func (s *ServiceIntegrationTestSuite) TestUserUpdate_OnlySelf() {
	name := "hijacked1"

	_, err := s.users.Update(s.ctx, callerOf(s.admin), s.member.ID, service.UpdateUserInput{Username: &name})
	s.assertKind(err, apperr.KindForbidden)

	stored, err := s.users.Get(s.ctx, s.member.ID)
	s.Require().NoError(err)
	s.Equal(s.member.Username, stored.Username)

	updated, err := s.users.Update(s.ctx, callerOf(s.member), s.member.ID, service.UpdateUserInput{Username: &name})
	s.Require().NoError(err)
	s.Equal(name, updated.Username)
}

func (s *ServiceIntegrationTestSuite) TestUserUpdate_Validation() {
	short := "abc"
	_, err := s.users.Update(s.ctx, callerOf(s.member), s.member.ID, service.UpdateUserInput{Password: &short})
	s.assertKind(err, apperr.KindValidation)
	s.Equal("Password must be at least 6 characters", apperr.MessageOf(err))

	spaced := "has space"
	_, err = s.users.Update(s.ctx, callerOf(s.member), s.member.ID, service.UpdateUserInput{Username: &spaced})
	s.assertKind(err, apperr.KindValidation)
	s.Equal("Username cannot contain spaces", apperr.MessageOf(err))

	taken := s.admin.Email
	_, err = s.users.Update(s.ctx, callerOf(s.member), s.member.ID, service.UpdateUserInput{Email: &taken})
	s.assertKind(err, apperr.KindConflict)

	own := s.member.Email
	_, err = s.users.Update(s.ctx, callerOf(s.member), s.member.ID, service.UpdateUserInput{Email: &own})
	s.NoError(err, "Keeping your own email is not a conflict")
}

func (s *ServiceIntegrationTestSuite) TestUserDelete_SelfOrAdmin() {
	other := testutil.CreateTestUser(s.T(), s.testDB.DB, "otheruser", "other@example.com", "Password1", false)

	err := s.users.Delete(s.ctx, callerOf(other), s.member.ID)
	s.assertKind(err, apperr.KindForbidden)
	_, err = s.users.Get(s.ctx, s.member.ID)
	s.NoError(err)

	s.NoError(s.users.Delete(s.ctx, callerOf(s.admin), s.member.ID))
	s.NoError(s.users.Delete(s.ctx, callerOf(other), other.ID))

	_, err = s.users.Get(s.ctx, other.ID)
	s.assertKind(err, apperr.KindNotFound)
}

// ==================== POSTS ====================

func (s *ServiceIntegrationTestSuite) TestPostCreate_AdminOnlyWithDefaults() {
	_, err := s.posts.Create(s.ctx, callerOf(s.member), service.CreatePostInput{Title: "Nope", Content: "x"})
	s.assertKind(err, apperr.KindForbidden)

	post, err := s.posts.Create(s.ctx, callerOf(s.admin), service.CreatePostInput{
		Title:   "Hello There, World!",
		Content: "<p>World</p><script>alert(1)</script>",
	})
	s.Require().NoError(err)
	s.Equal("hello-there-world", post.Slug)
	s.Equal(models.DefaultCategory, post.Category)
	s.Equal(models.DefaultPostImage, post.Image)
	s.NotContains(post.Content, "<script>")
	s.Equal(s.admin.ID, post.UserID)

	_, err = s.posts.Create(s.ctx, callerOf(s.admin), service.CreatePostInput{Title: "Hello There, World!", Content: "again"})
	s.assertKind(err, apperr.KindConflict)

	// Different title, same slug
	_, err = s.posts.Create(s.ctx, callerOf(s.admin), service.CreatePostInput{Title: "hello there world", Content: "again"})
	s.assertKind(err, apperr.KindConflict)

	_, err = s.posts.Create(s.ctx, callerOf(s.admin), service.CreatePostInput{Title: "  ", Content: "body"})
	s.assertKind(err, apperr.KindValidation)
}

func (s *ServiceIntegrationTestSuite) TestPostCreate_Markdown() {
	post, err := s.posts.Create(s.ctx, callerOf(s.admin), service.CreatePostInput{
		Title:       "Markdown Post",
		Content:     "# Heading\n\n**bold** [link](https://example.com)",
		ContentType: utils.ContentTypeMarkdown,
	})
	s.Require().NoError(err)
	s.Contains(post.Content, "<h1>Heading</h1>")
	s.Contains(post.Content, "<strong>bold</strong>")
}

func (s *ServiceIntegrationTestSuite) TestPostUpdate_ForbiddenLeavesPostUntouched() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "Original Title", "body", "go")
	title := "Stolen Title"

	_, err := s.posts.Update(s.ctx, callerOf(s.member), post.ID, service.UpdatePostInput{Title: &title})
	s.assertKind(err, apperr.KindForbidden)

	err = s.posts.Delete(s.ctx, callerOf(s.member), post.ID)
	s.assertKind(err, apperr.KindForbidden)

	var stored models.Post
	s.Require().NoError(s.testDB.DB.First(&stored, "id = ?", post.ID).Error)
	s.Equal("Original Title", stored.Title)
	s.Equal("original-title", stored.Slug)
}

func (s *ServiceIntegrationTestSuite) TestPostUpdate_RecomputesSlug() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "Original Title", "body", "go")
	title := "Brand New Title"
	category := "news"

	updated, err := s.posts.Update(s.ctx, callerOf(s.admin), post.ID, service.UpdatePostInput{
		Title:    &title,
		Category: &category,
	})
	s.Require().NoError(err)
	s.Equal("brand-new-title", updated.Slug)
	s.Equal("news", updated.Category)
	s.Equal("body", updated.Content)

	_, err = s.posts.Update(s.ctx, callerOf(s.admin), uuid.New(), service.UpdatePostInput{Title: &title})
	s.assertKind(err, apperr.KindNotFound)
}

func (s *ServiceIntegrationTestSuite) TestPostDelete_Owner() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "To Delete", "body", "go")
	testutil.CreateTestComment(s.T(), s.testDB.DB, post.ID, s.member.ID, "bye")

	s.Require().NoError(s.posts.Delete(s.ctx, callerOf(s.admin), post.ID))
	s.Zero(s.countRows(&models.Comment{}))

	err := s.posts.Delete(s.ctx, callerOf(s.admin), post.ID)
	s.assertKind(err, apperr.KindNotFound)
}

// ==================== COMMENTS ====================

func (s *ServiceIntegrationTestSuite) TestCommentCreate() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "Commented", "body", "go")

	comment, err := s.comments.Create(s.ctx, callerOf(s.member), post.ID, uuid.Nil, "  nice post  ")
	s.Require().NoError(err)
	s.Equal("nice post", comment.Content)
	s.Equal(s.member.ID, comment.UserID)
	s.Empty(comment.Likes)
	s.NotNil(comment.Likes)

	_, err = s.comments.Create(s.ctx, callerOf(s.member), post.ID, s.admin.ID, "as admin")
	s.assertKind(err, apperr.KindForbidden)

	_, err = s.comments.Create(s.ctx, callerOf(s.member), uuid.New(), uuid.Nil, "orphan")
	s.assertKind(err, apperr.KindNotFound)

	_, err = s.comments.Create(s.ctx, callerOf(s.member), post.ID, uuid.Nil, "   ")
	s.assertKind(err, apperr.KindValidation)
}

func (s *ServiceIntegrationTestSuite) TestCommentEditAndDelete_Guarded() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "Guarded", "body", "go")
	comment := testutil.CreateTestComment(s.T(), s.testDB.DB, post.ID, s.admin.ID, "admin says")

	_, err := s.comments.Edit(s.ctx, callerOf(s.member), comment.ID, "defaced")
	s.assertKind(err, apperr.KindForbidden)
	err = s.comments.Delete(s.ctx, callerOf(s.member), comment.ID)
	s.assertKind(err, apperr.KindForbidden)

	stored, err := s.comments.ListByPost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Equal("admin says", stored[0].Content)

	mine := testutil.CreateTestComment(s.T(), s.testDB.DB, post.ID, s.member.ID, "mine")
	edited, err := s.comments.Edit(s.ctx, callerOf(s.member), mine.ID, "mine, edited")
	s.Require().NoError(err)
	s.Equal("mine, edited", edited.Content)

	// Admin override
	s.NoError(s.comments.Delete(s.ctx, callerOf(s.admin), mine.ID))
}

func (s *ServiceIntegrationTestSuite) TestToggleLike_TwoUsers() {
	post := testutil.CreateTestPost(s.T(), s.testDB.DB, s.admin.ID, "Liked", "body", "go")
	comment := testutil.CreateTestComment(s.T(), s.testDB.DB, post.ID, s.admin.ID, "fresh")

	_, err := s.comments.ToggleLike(s.ctx, callerOf(s.admin), comment.ID)
	s.Require().NoError(err)
	liked, err := s.comments.ToggleLike(s.ctx, callerOf(s.member), comment.ID)
	s.Require().NoError(err)

	s.Equal(2, liked.NumberOfLikes)
	s.ElementsMatch([]uuid.UUID{s.admin.ID, s.member.ID}, liked.Likes)

	_, err = s.comments.ToggleLike(s.ctx, callerOf(s.member), uuid.New())
	s.assertKind(err, apperr.KindNotFound)
}

func TestServiceIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceIntegrationTestSuite))
}
