package transcripts

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
)

// Handler exposes the transcript intake endpoint.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a transcript intake handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes mounts the transcript intake endpoint.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/process-meeting", h.Process)
}

type processRequest struct {
	MeetingID      string `json:"meeting_id"`
	OrganizationID string `json:"organization_id"`
}

// Process accepts an external meeting id and starts content generation.
func (h *Handler) Process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid JSON payload")
		return
	}
	if req.MeetingID == "" {
		response.BadRequest(c, "Missing required field: meeting_id")
		return
	}
	if req.OrganizationID == "" {
		response.BadRequest(c, "Missing required field: organization_id")
		return
	}

	result, err := h.service.Process(c.Request.Context(), req.MeetingID, req.OrganizationID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidMeetingID), errors.Is(err, ErrNoTranscript):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrMeetingNotFound):
			response.NotFound(c, err.Error())
		default:
			h.logger.Error("meeting processing error",
				zap.String("meeting_id", req.MeetingID), zap.Error(err))
			response.Internal(c, "Failed to process meeting")
		}
		return
	}

	response.OK(c, "Meeting processing started successfully", result)
}
