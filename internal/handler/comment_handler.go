package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-board-api/internal/dto"
	"library-board-api/internal/response"
	"library-board-api/internal/service"
)

// CommentHandler handles comment-related requests
type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// CreateComment handles POST /api/v1/posts/:id/comments
func (h *CommentHandler) CreateComment(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.commentService.CreateComment(c.Request.Context(), postID, &req, email)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, resp)
}

// ListComments handles GET /api/v1/posts/:id/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.commentService.ListComments(c.Request.Context(), postID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// UpdateComment handles PUT /api/v1/comments/:id
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	commentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request: "+err.Error())
		return
	}

	resp, err := h.commentService.UpdateComment(c.Request.Context(), commentID, email, &req)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// DeleteComment handles DELETE /api/v1/comments/:id
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	commentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), commentID, email); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
