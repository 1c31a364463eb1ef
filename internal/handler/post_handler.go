package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/service"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

type CreatePostRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Image       string `json:"image"`
	ContentType string `json:"contentType"`
}

type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Category    *string `json:"category"`
	Image       *string `json:"image"`
	ContentType string  `json:"contentType"`
}

type PostsResponse struct {
	Posts          []models.Post `json:"posts"`
	TotalPosts     int64         `json:"totalPosts"`
	LastMonthPosts int64         `json:"lastMonthPosts"`
}

// POST /api/post/create (admin)
func (h *PostHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Create(c.Request.Context(), caller, service.CreatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Image:       req.Image,
		ContentType: req.ContentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// GET /api/post/getposts
func (h *PostHandler) GetPosts(c *gin.Context) {
	filter := repository.PostFilter{
		Category:   c.Query("category"),
		Slug:       c.Query("slug"),
		SearchTerm: c.Query("searchTerm"),
	}

	var ok bool
	if filter.UserID, ok = optionalID(c, "userId"); !ok {
		return
	}
	if filter.PostID, ok = optionalID(c, "postId"); !ok {
		return
	}

	params := parseListParams(c.Query("startIndex"), c.Query("limit"), c.Query("order"), repository.SortAsc)
	params.SortField = c.Query("sortBy")

	page, err := h.postService.List(c.Request.Context(), filter, params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, PostsResponse{
		Posts:          page.Items,
		TotalPosts:     page.Total,
		LastMonthPosts: page.LastMonth,
	})
}

// PUT /api/post/updatepost/:id
func (h *PostHandler) Update(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Post not found")
	if !ok {
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.postService.Update(c.Request.Context(), caller, id, service.UpdatePostInput{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Image:       req.Image,
		ContentType: req.ContentType,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DELETE /api/post/deletepost/:id
func (h *PostHandler) Delete(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Post not found")
	if !ok {
		return
	}

	if err := h.postService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "The post has been deleted"})
}

func optionalID(c *gin.Context, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid "+key)
		return nil, false
	}
	return &id, true
}
