package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/internal/models"
	"github.com/Aaadddiii6/Automated-Facebook-Blog-Poster/pkg/response"
)

// Step values the automation engine reports back with.
const (
	StepTranscriptionComplete  = "transcription_complete"
	StepBlogGenerationComplete = "blog_generation_complete"
	StepFacebookPostComplete   = "facebook_post_complete"
	StepProcessingError        = "processing_error"
)

// Event is the callback body sent by the automation engine after each
// pipeline stage. VideoID is a pointer so a present-but-empty value can be
// told apart from an absent one.
type Event struct {
	MeetingID string                 `json:"meeting_id"`
	VideoID   *string                `json:"video_id"`
	Step      string                 `json:"step"`
	Data      map[string]interface{} `json:"data"`
	Status    string                 `json:"status"`
	Error     string                 `json:"error"`
}

// MeetingStore is the slice of the meetings repository the step machine needs.
type MeetingStore interface {
	SetTranscript(ctx context.Context, id uuid.UUID, transcript, summary string) error
}

// BlogStore covers blog post and poster writes.
type BlogStore interface {
	Create(ctx context.Context, b *models.BlogPost) error
	SetFacebookPost(ctx context.Context, id uuid.UUID, postID, postURL string) error
	CreatePoster(ctx context.Context, p *models.Poster) error
	MarkPosterPosted(ctx context.Context, blogPostID uuid.UUID, imageURL string) error
}

// LogStore appends processing log entries.
type LogStore interface {
	Append(ctx context.Context, entry *models.ProcessingLog) error
}

// Handler applies step-completion events from the automation engine.
type Handler struct {
	meetings MeetingStore
	blogs    BlogStore
	logs     LogStore
	logger   *zap.Logger
}

// NewHandler creates a webhook handler.
func NewHandler(meetings MeetingStore, blogs BlogStore, logs LogStore, logger *zap.Logger) *Handler {
	return &Handler{meetings: meetings, blogs: blogs, logs: logs, logger: logger}
}

// RegisterRoutes mounts the webhook endpoints. The aliases accept the same
// body as the main endpoint; the automation engine scenarios differ only in
// which URL they were configured with.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/webhook", h.Handle)
	r.POST("/api/webhook/video-upload", h.Handle)
	r.POST("/api/webhook/meeting-id", h.Handle)
}

// Handle validates and dispatches one event. Internal faults never escape:
// they are logged and reported as a generic 500.
func (h *Handler) Handle(c *gin.Context) {
	var ev Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.BadRequest(c, "Invalid JSON payload")
		return
	}

	if ev.MeetingID == "" {
		response.BadRequest(c, "Missing required field: meeting_id")
		return
	}
	if ev.Step == "" {
		response.BadRequest(c, "Missing required field: step")
		return
	}
	switch ev.Step {
	case StepTranscriptionComplete, StepBlogGenerationComplete, StepFacebookPostComplete, StepProcessingError:
	default:
		response.BadRequest(c, fmt.Sprintf(
			"Invalid step: %s. Valid steps: %s, %s, %s, %s", ev.Step,
			StepTranscriptionComplete, StepBlogGenerationComplete, StepFacebookPostComplete, StepProcessingError))
		return
	}

	if ev.Step == StepTranscriptionComplete || ev.Step == StepProcessingError {
		_, fromTranscriptFlow := ev.Data["source"]
		if ev.VideoID == nil && !fromTranscriptFlow {
			response.BadRequest(c, "Either video_id or data.source is required for this step")
			return
		}
		if ev.VideoID != nil && *ev.VideoID == "" {
			response.BadRequest(c, "video_id is required for video upload flow")
			return
		}
	}

	meetingID, err := uuid.Parse(ev.MeetingID)
	if err != nil {
		response.BadRequest(c, "Invalid meeting ID format")
		return
	}

	ctx := c.Request.Context()
	switch ev.Step {
	case StepTranscriptionComplete:
		err = h.handleTranscription(ctx, meetingID, &ev)
	case StepBlogGenerationComplete:
		err = h.handleBlogGeneration(ctx, meetingID, &ev)
	case StepFacebookPostComplete:
		err = h.handleFacebookPost(ctx, meetingID, &ev)
	case StepProcessingError:
		err = h.handleProcessingError(ctx, meetingID, &ev)
	}
	if err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("meeting_id", ev.MeetingID),
			zap.String("step", ev.Step),
			zap.Error(err))
		response.Internal(c, "Webhook processing failed")
		return
	}

	response.OK(c, "Webhook processed successfully", nil)
}

func (h *Handler) handleTranscription(ctx context.Context, meetingID uuid.UUID, ev *Event) error {
	transcript := stringField(ev.Data, "transcript")
	summary := stringField(ev.Data, "summary")
	source := stringField(ev.Data, "source")
	if source == "" {
		source = "video_upload"
	}

	if err := h.meetings.SetTranscript(ctx, meetingID, transcript, summary); err != nil {
		return err
	}

	// Video rows carry no status column; the transition is observable in the
	// processing log only.
	if ev.VideoID != nil && source == "video_upload" {
		h.logger.Info("video transcribed",
			zap.String("meeting_id", meetingID.String()),
			zap.String("video_id", *ev.VideoID))
	}

	details := map[string]interface{}{
		"transcript_length": len(transcript),
		"summary_length":    len(summary),
		"source":            source,
	}
	if ev.VideoID != nil {
		details["video_id"] = *ev.VideoID
	}
	return h.appendLog(ctx, meetingID, "transcription", models.LogStatusCompleted, details)
}

func (h *Handler) handleBlogGeneration(ctx context.Context, meetingID uuid.UUID, ev *Event) error {
	post := &models.BlogPost{
		MeetingID: meetingID,
		Title:     stringField(ev.Data, "title"),
		Content:   stringField(ev.Data, "content"),
		Summary:   stringField(ev.Data, "summary"),
	}
	if raw := stringField(ev.Data, "blog_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.logger.Warn("discarding malformed blog_id, generating a local one",
				zap.String("meeting_id", meetingID.String()),
				zap.String("blog_id", raw))
		} else {
			post.ID = id
		}
	}
	if raw := stringField(ev.Data, "created_at"); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			post.CreatedAt = ts
		}
	}
	if err := h.blogs.Create(ctx, post); err != nil {
		return err
	}

	imageURL := stringField(ev.Data, "image_url")
	if imageURL == "" {
		imageURL = stringField(ev.Data, "poster_url")
	}
	if imageURL != "" {
		poster := &models.Poster{
			MeetingID:        meetingID,
			BlogPostID:       post.ID,
			ImageURL:         imageURL,
			GenerationPrompt: stringField(ev.Data, "image_prompt"),
			ImageType:        stringField(ev.Data, "image_type"),
		}
		if err := h.blogs.CreatePoster(ctx, poster); err != nil {
			return err
		}
	}

	return h.appendLog(ctx, meetingID, "blog_generation", models.LogStatusCompleted, map[string]interface{}{
		"blog_id":         post.ID.String(),
		"title":           post.Title,
		"image_generated": imageURL != "",
	})
}

func (h *Handler) handleFacebookPost(ctx context.Context, meetingID uuid.UUID, ev *Event) error {
	blogID, err := uuid.Parse(stringField(ev.Data, "blog_id"))
	if err != nil {
		return fmt.Errorf("invalid blog_id: %w", err)
	}
	postID := stringField(ev.Data, "facebook_post_id")
	postURL := stringField(ev.Data, "facebook_post_url")

	if err := h.blogs.SetFacebookPost(ctx, blogID, postID, postURL); err != nil {
		return err
	}

	if imageURL := stringField(ev.Data, "image_url"); imageURL != "" {
		if err := h.blogs.MarkPosterPosted(ctx, blogID, imageURL); err != nil {
			return err
		}
	}

	return h.appendLog(ctx, meetingID, "facebook_post", models.LogStatusCompleted, map[string]interface{}{
		"blog_id":           blogID.String(),
		"facebook_post_id":  postID,
		"facebook_post_url": postURL,
		"image_used":        stringField(ev.Data, "image_url") != "",
	})
}

func (h *Handler) handleProcessingError(ctx context.Context, meetingID uuid.UUID, ev *Event) error {
	details := map[string]interface{}{
		"error_message": ev.Error,
	}
	if ev.VideoID != nil {
		details["video_id"] = *ev.VideoID
		h.logger.Warn("video processing failed",
			zap.String("meeting_id", meetingID.String()),
			zap.String("video_id", *ev.VideoID),
			zap.String("error", ev.Error))
	}
	return h.appendLog(ctx, meetingID, "error", models.LogStatusFailed, details)
}

func (h *Handler) appendLog(ctx context.Context, meetingID uuid.UUID, step, status string, details map[string]interface{}) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return err
	}
	return h.logs.Append(ctx, &models.ProcessingLog{
		MeetingID: meetingID,
		Step:      step,
		Status:    status,
		Details:   raw,
	})
}

func stringField(data map[string]interface{}, key string) string {
	if data == nil {
		return ""
	}
	s, _ := data[key].(string)
	return s
}
