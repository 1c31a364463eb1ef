package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/repository"
	"github.com/quillpress/blog-api/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

type CreateCommentRequest struct {
	Content string `json:"content"`
	PostID  string `json:"postId"`
	UserID  string `json:"userId"`
}

type EditCommentRequest struct {
	Content string `json:"content"`
}

type CommentsResponse struct {
	Comments          []models.Comment `json:"comments"`
	TotalComments     int64            `json:"totalComments"`
	LastMonthComments int64            `json:"lastMonthComments"`
}

// POST /api/comment/create
func (h *CommentHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		respondStatus(c, http.StatusBadRequest, "Please provide all required fields")
		return
	}

	authorID := uuid.Nil
	if req.UserID != "" {
		if authorID, err = uuid.Parse(req.UserID); err != nil {
			respondStatus(c, http.StatusForbidden, "You are not allowed to create this comment")
			return
		}
	}

	comment, err := h.commentService.Create(c.Request.Context(), caller, postID, authorID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// GET /api/comment/getPostComments/:postId
func (h *CommentHandler) GetPostComments(c *gin.Context) {
	postID, ok := idParam(c, "postId", "Post not found")
	if !ok {
		return
	}

	comments, err := h.commentService.ListByPost(c.Request.Context(), postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// PUT /api/comment/likeComment/:id
func (h *CommentHandler) LikeComment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Comment not found")
	if !ok {
		return
	}

	comment, err := h.commentService.ToggleLike(c.Request.Context(), caller, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// PUT /api/comment/editComment/:id
func (h *CommentHandler) EditComment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Comment not found")
	if !ok {
		return
	}

	var req EditCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondStatus(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	comment, err := h.commentService.Edit(c.Request.Context(), caller, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DELETE /api/comment/deleteComment/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id", "Comment not found")
	if !ok {
		return
	}

	if err := h.commentService.Delete(c.Request.Context(), caller, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Comment has been deleted"})
}

// GET /api/comment/getcomments (admin)
func (h *CommentHandler) GetComments(c *gin.Context) {
	params := parseListParams(c.Query("startIndex"), c.Query("limit"), c.Query("sort"), repository.SortAsc)

	page, err := h.commentService.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CommentsResponse{
		Comments:          page.Items,
		TotalComments:     page.Total,
		LastMonthComments: page.LastMonth,
	})
}
