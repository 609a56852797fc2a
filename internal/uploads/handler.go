package uploads

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
)

// Handler exposes the video upload endpoint.
type Handler struct {
	service  *Service
	maxBytes int64
	logger   *zap.Logger
}

// NewHandler creates an upload handler.
func NewHandler(service *Service, maxBytes int64, logger *zap.Logger) *Handler {
	return &Handler{service: service, maxBytes: maxBytes, logger: logger}
}

// RegisterRoutes mounts the upload endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/upload", h.Upload)
}

// Upload accepts a multipart video upload with optional meeting metadata.
func (h *Handler) Upload(c *gin.Context) {
	if c.Request.ContentLength > 0 && h.maxBytes > 0 && c.Request.ContentLength > h.maxBytes {
		response.TooLarge(c, "File too large")
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "No video file provided")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", zap.Error(err))
		response.Internal(c, "Upload failed")
		return
	}
	defer file.Close()

	result, err := h.service.Upload(c.Request.Context(), Input{
		File:           file,
		Filename:       fileHeader.Filename,
		MeetingTitle:   c.PostForm("meeting_title"),
		Description:    c.PostForm("meeting_description"),
		OrganizationID: c.PostForm("organization_id"),
	})
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(c, verr.Message)
			return
		}
		h.logger.Error("upload processing error", zap.Error(err))
		response.Internal(c, "Upload failed")
		return
	}

	response.OK(c, "Video uploaded successfully", result)
}
