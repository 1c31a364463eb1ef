package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/middleware"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/service"
	"github.com/quillpress/blog-api/pkg/logger"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService  *service.AuthService
	cookieMaxAge time.Duration
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, cookieMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type GoogleRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	GooglePhotoURL string `json:"googlePhotoUrl"`
}

// AuthResponse is the signed-in user plus the bearer token.
type AuthResponse struct {
	*models.User
	Token string `json:"token"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Signup request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	_, err := h.authService.Signup(c.Request.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Signup successful"})
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Log.Warn("Signin request parsing failed",
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.authService.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}

func (h *AuthHandler) Google(c *gin.Context) {
	var req GoogleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.authService.Google(c.Request.Context(), service.GoogleInput{
		Email:    req.Email,
		Name:     req.Name,
		PhotoURL: req.GooglePhotoURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.setTokenCookie(c, token)
	c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}

// Signout clears the cookie; bearer tokens simply expire.
func (h *AuthHandler) Signout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, MessageResponse{Message: "User has been signed out"})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		middleware.AccessTokenCookie,
		token,
		int(h.cookieMaxAge.Seconds()),
		"/",
		"",
		h.secureCookie,
		true,
	)
}
