package videos

import (
	"context"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/probe"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/storage"
)

// Store is the slice of the repository the video endpoints use.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
}

// FileStore checks the local file backing a video row.
type FileStore interface {
	Exists(path string) bool
	Info(path string) (*storage.FileInfo, error)
}

// Inspector extracts container metadata from a local file.
type Inspector interface {
	Inspect(ctx context.Context, path string) *probe.Info
}

// Handler serves video metadata and the local file fallback used by the
// automation engine when the remote host upload failed.
type Handler struct {
	store     Store
	files     FileStore
	inspector Inspector
	logger    *zap.Logger
}

// NewHandler creates a videos handler.
func NewHandler(store Store, files FileStore, inspector Inspector, logger *zap.Logger) *Handler {
	return &Handler{store: store, files: files, inspector: inspector, logger: logger}
}

// RegisterRoutes mounts the video endpoints.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/api/videos/:id/info", h.Info)
	r.GET("/api/videos/:id/file", h.File)
}

// Info returns the video row plus on-disk metadata when the file is present.
func (h *Handler) Info(c *gin.Context) {
	video, ok := h.lookup(c)
	if !ok {
		return
	}

	body := gin.H{
		"id":                video.ID,
		"meeting_id":        video.MeetingID,
		"original_filename": video.OriginalFilename,
		"file_path":         video.LocalFilePath,
		"remote_url":        video.RemoteURL,
		"remote_id":         video.RemoteID,
		"uploaded_at":       video.UploadedAt,
		"created_at":        video.CreatedAt,
	}
	body["file_exists"] = false
	if video.LocalFilePath != "" {
		if fi, err := h.files.Info(video.LocalFilePath); err == nil {
			body["file_exists"] = true
			body["file_size"] = fi.Size
			body["file_modified_at"] = fi.ModTime
			if info := h.inspector.Inspect(c.Request.Context(), video.LocalFilePath); info != nil {
				body["media_info"] = info
			}
		}
	}

	c.JSON(http.StatusOK, body)
}

// File streams the local video file.
func (h *Handler) File(c *gin.Context) {
	video, ok := h.lookup(c)
	if !ok {
		return
	}

	if video.LocalFilePath == "" || !h.files.Exists(video.LocalFilePath) {
		response.NotFound(c, "Video file not found")
		return
	}

	c.Header("Content-Disposition", "inline; filename=\""+filepath.Base(video.LocalFilePath)+"\"")
	c.Header("Content-Type", "video/mp4")
	c.File(video.LocalFilePath)
}

func (h *Handler) lookup(c *gin.Context) (*models.Video, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid video ID format")
		return nil, false
	}

	video, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("failed to get video", zap.String("video_id", id.String()), zap.Error(err))
		response.Internal(c, "Failed to get video info")
		return nil, false
	}
	if video == nil {
		response.NotFound(c, "Video not found")
		return nil, false
	}
	return video, true
}
