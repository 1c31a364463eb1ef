package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/config"
	"github.com/quillpress/blog-api/internal/handler"
	"github.com/quillpress/blog-api/internal/middleware"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/service"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires repositories, services and handlers onto a gin engine. redisClient
// may be nil, in which case /api/auth is not rate limited.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *gin.Engine {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiry)
	userService := service.NewUserService(userRepo)
	postService := service.NewPostService(postRepo)
	commentService := service.NewCommentService(commentRepo, postRepo)

	authHandler := handler.NewAuthHandler(authService, cfg.JWTExpiry, cfg.IsProduction())
	userHandler := handler.NewUserHandler(userService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)

	r := gin.New()
	r.Use(
		middleware.RequestLogger(),
		middleware.Recovery(),
		corsMiddleware(cfg.CORSAllowedOrigins),
		middleware.SecurityHeaders(cfg.IsProduction()),
	)

	r.GET("/healthz", healthz(db))

	requireAuth := middleware.AuthMiddleware(cfg.JWTSecret)
	api := r.Group("/api")

	auth := api.Group("/auth")
	if redisClient != nil {
		limiter := middleware.NewRateLimiter(redisClient, middleware.RateLimiterConfig{
			MaxRequests: cfg.RateLimitMaxRequests,
			Window:      cfg.RateLimitWindow,
			BlockTime:   cfg.RateLimitBlockTime,
		})
		auth.Use(limiter.Middleware())
	}
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/signin", authHandler.Signin)
		auth.POST("/google", authHandler.Google)
	}

	user := api.Group("/user")
	{
		user.PUT("/update/:id", requireAuth, userHandler.UpdateUser)
		user.DELETE("/delete/:id", requireAuth, userHandler.DeleteUser)
		user.POST("/signout", authHandler.Signout)
		user.GET("/getusers", requireAuth, middleware.AdminMiddleware("You are not allowed to see all users"), userHandler.GetUsers)
		user.GET("/:id", userHandler.GetUser)
	}

	post := api.Group("/post")
	{
		post.POST("/create", requireAuth, middleware.AdminMiddleware("You are not allowed to create a post"), postHandler.Create)
		post.GET("/getposts", postHandler.GetPosts)
		post.PUT("/updatepost/:id", requireAuth, postHandler.Update)
		post.DELETE("/deletepost/:id", requireAuth, postHandler.Delete)
	}

	comment := api.Group("/comment")
	{
		comment.POST("/create", requireAuth, commentHandler.Create)
		comment.GET("/getPostComments/:postId", commentHandler.GetPostComments)
		comment.PUT("/likeComment/:id", requireAuth, commentHandler.LikeComment)
		comment.PUT("/editComment/:id", requireAuth, commentHandler.EditComment)
		comment.DELETE("/deleteComment/:id", requireAuth, commentHandler.DeleteComment)
		comment.GET("/getcomments", requireAuth, middleware.AdminMiddleware("You are not allowed to get all comments"), commentHandler.GetComments)
	}

	r.NoRoute(clientFallback(cfg.ClientDir))

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	// Browsers refuse credentialed requests to a wildcard origin
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	return cors.New(corsConfig)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			middleware.AbortWithStatus(c, http.StatusServiceUnavailable, "Database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// clientFallback serves the built client for non-API paths, falling back to
// index.html so client-side routes resolve. API paths get the 404 envelope.
func clientFallback(clientDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if clientDir == "" || strings.HasPrefix(path, "/api/") || path == "/api" ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			middleware.AbortWithStatus(c, http.StatusNotFound, "Route not found")
			return
		}

		file := filepath.Join(clientDir, filepath.Clean("/"+path))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			c.File(file)
			return
		}
		c.File(filepath.Join(clientDir, "index.html"))
	}
}
