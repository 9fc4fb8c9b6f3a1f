package handler

import (
	"io"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-board-api/internal/service"
)

// FileHandler serves attachment downloads
type FileHandler struct {
	fileService service.FileService
	logger      *zap.Logger
}

// NewFileHandler creates a new FileHandler
func NewFileHandler(fileService service.FileService, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		logger:      logger,
	}
}

// DownloadAttachment handles GET /api/v1/files/:id/download. The original
// filename goes out percent-encoded so non-ASCII names survive the header.
func (h *FileHandler) DownloadAttachment(c *gin.Context) {
	attachmentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	download, err := h.fileService.DownloadAttachment(c.Request.Context(), attachmentID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	defer download.Content.Close()

	encoded := url.PathEscape(download.OriginalName)
	c.Header("Content-Disposition", `attachment; filename="`+encoded+`"; filename*=UTF-8''`+encoded)
	c.Header("Content-Type", download.MimeType)
	if download.Size > 0 {
		c.Header("Content-Length", strconv.FormatInt(download.Size, 10))
	}

	if _, err := io.Copy(c.Writer, download.Content); err != nil {
		// Headers are gone already; all we can do is note the broken transfer
		h.logger.Warn("Attachment transfer aborted",
			zap.String("attachment_id", attachmentID.String()),
			zap.Error(err),
		)
	}
}
