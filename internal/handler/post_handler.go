// Package handler provides HTTP request handlers for the API.
package handler

import (
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"library-board-api/internal/dto"
	"library-board-api/internal/response"
	"library-board-api/internal/service"
	"library-board-api/internal/storage"
)

// uploadFormField is the multipart field name carrying attachment files
const uploadFormField = "files"

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// PostHandler handles post-related requests
type PostHandler struct {
	postService service.PostService
	logger      *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService service.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

// CreatePost handles POST /api/v1/posts. The body is a multipart form with
// the text fields plus zero or more file parts under "files".
func (h *PostHandler) CreatePost(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request: "+err.Error())
		return
	}

	uploads, closeUploads, err := formUploads(c)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid multipart form")
		return
	}
	defer closeUploads()

	resp, err := h.postService.CreatePost(c.Request.Context(), &req, uploads, email)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusCreated, resp)
}

// ListPosts handles GET /api/v1/posts
func (h *PostHandler) ListPosts(c *gin.Context) {
	page := queryInt(c, "page", defaultPage)
	pageSize := queryInt(c, "size", defaultPageSize)

	resp, err := h.postService.ListPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// ListPopularPosts handles GET /api/v1/posts/popular
func (h *PostHandler) ListPopularPosts(c *gin.Context) {
	resp, err := h.postService.ListPopularPosts(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// GetPost handles GET /api/v1/posts/:id and counts the view
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.postService.GetPostDetail(c.Request.Context(), postID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// GetPostForEdit handles GET /api/v1/posts/:id/edit without counting a view
func (h *PostHandler) GetPostForEdit(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	resp, err := h.postService.GetPostForEdit(c.Request.Context(), postID, email)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// UpdatePost handles PUT /api/v1/posts/:id with the same multipart shape as
// CreatePost
func (h *PostHandler) UpdatePost(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid request: "+err.Error())
		return
	}

	uploads, closeUploads, err := formUploads(c)
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid multipart form")
		return
	}
	defer closeUploads()

	resp, err := h.postService.UpdatePost(c.Request.Context(), postID, email, &req, uploads)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	response.SendSuccess(c, http.StatusOK, resp)
}

// DeletePost handles DELETE /api/v1/posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	email, ok := callerEmail(c)
	if !ok {
		return
	}
	postID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.postService.DeletePost(c.Request.Context(), postID, email); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// pathUUID parses a UUID path parameter, answering the request itself on
// failure
func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.SendError(c, http.StatusBadRequest, response.ErrCodeValidation, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter with a fallback
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// formUploads turns the multipart file parts into storage uploads. Requests
// without a multipart body yield no uploads.
func formUploads(c *gin.Context) ([]*storage.Upload, func(), error) {
	if c.ContentType() != "multipart/form-data" {
		return nil, func() {}, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, err
	}

	var uploads []*storage.Upload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range form.File[uploadFormField] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, &storage.Upload{
			Filename:    fh.Filename,
			Size:        fh.Size,
			ContentType: fh.Header.Get("Content-Type"),
			Content:     f,
		})
	}
	return uploads, closeAll, nil
}
