package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/service"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateUserRequest struct {
	Username       *string `json:"username"`
	Email          *string `json:"email"`
	Password       *string `json:"password"`
	ProfilePicture *string `json:"profilePicture"`
}

type UsersResponse struct {
	Users          []models.User `json:"users"`
	TotalUsers     int64         `json:"totalUsers"`
	LastMonthUsers int64         `json:"lastMonthUsers"`
}

// GET /api/user/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id", "User not found")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// PUT /api/user/update/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "User not found")
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), caller, id, service.UpdateUserInput{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// DELETE /api/user/delete/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "User not found")
	if !ok {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "User has been deleted"})
}

// GET /api/user/getusers (admin)
func (h *UserHandler) GetUsers(c *gin.Context) {
	params := parseListParams(c.Query("startIndex"), c.Query("limit"), c.Query("sort"), repository.SortDesc)

	page, err := h.userService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, UsersResponse{
		Users:          page.Items,
		TotalUsers:     page.Total,
		LastMonthUsers: page.LastMonth,
	})
}
